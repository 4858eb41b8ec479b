package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// LogLevelEnv overrides the configured log level when set
const LogLevelEnv = "ISOMODEL_LOG_LEVEL"

// Config holds the application configuration
type Config struct {
	DefaultsFile  string     `yaml:"defaults_file,omitempty"` // .ism defaults applied to every building
	DBPath        string     `yaml:"db_path,omitempty"`
	LogLevel      string     `yaml:"log_level,omitempty"` // info, debug or trace
	Workers       int        `yaml:"workers,omitempty"`   // batch parallelism (fallback: GOMAXPROCS)
	MQTT          MQTTConfig `yaml:"mqtt,omitempty"`
	HomeAssistant HAConfig   `yaml:"home_assistant,omitempty"`
}

// MQTTConfig holds broker settings for publishing simulation results
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`       // e.g., "http://homeassistant.local:8123"
	Token    string `yaml:"token"`     // Long-lived access token
	EntityID string `yaml:"entity_id"` // e.g., "sensor.building_eui"
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// fileHeader starts every file written by Save
const fileHeader = "# isomodel configuration\n"

// Save writes cfg as YAML with mode 0600. The file is written next to its
// destination and renamed into place, so a failed write leaves any existing
// config intact.
func Save(configPath string, cfg *Config) error {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".isomodel-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temporary config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting config permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), configPath); err != nil {
		return fmt.Errorf("replacing config file: %w", err)
	}
	return nil
}

// Resolved returns a copy with every defaulted field filled in. The log
// level environment override is not applied.
func (c *Config) Resolved() *Config {
	out := *c
	out.DBPath = c.GetDBPath()
	out.Workers = c.GetWorkers()
	out.MQTT.TopicPrefix = c.GetTopicPrefix()
	if out.LogLevel == "" {
		out.LogLevel = "info"
	}
	return &out
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "isomodel.yaml"
}

// GetDBPath returns the results database path with a default of isomodel.db
func (c *Config) GetDBPath() string {
	if c.DBPath == "" {
		return "isomodel.db"
	}
	return c.DBPath
}

// GetLogLevel returns the log level, preferring the environment override
func (c *Config) GetLogLevel() string {
	if env := strings.TrimSpace(os.Getenv(LogLevelEnv)); env != "" {
		return env
	}
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// GetWorkers returns the batch worker count, defaulting to GOMAXPROCS
func (c *Config) GetWorkers() int {
	if c.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}

// GetTopicPrefix returns the MQTT topic prefix with a default of isomodel
func (c *Config) GetTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return "isomodel"
	}
	return strings.TrimSuffix(c.MQTT.TopicPrefix, "/")
}
