package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isomodel.yaml")
	content := `
defaults_file: test_data/defaults.ism
db_path: /var/lib/isomodel/runs.db
log_level: debug
workers: 3
mqtt:
  enabled: true
  broker: localhost:1883
  topic_prefix: buildings/
home_assistant:
  enabled: true
  url: http: //ha.local:8123
  token: abc
  entity_id: sensor.office_eui
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test_data/defaults.ism", cfg.DefaultsFile)
	assert.Equal(t, "/var/lib/isomodel/runs.db", cfg.GetDBPath())
	assert.Equal(t, 3, cfg.GetWorkers())
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "buildings", cfg.GetTopicPrefix())
	assert.Equal(t, "sensor.office_eui", cfg.HomeAssistant.EntityID)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1, 2"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config file")
}

func TestDefaults(t *testing.T) {
	t.Setenv(LogLevelEnv, "")
	cfg := &Config{}
	assert.Equal(t, "isomodel.db", cfg.GetDBPath())
	assert.Equal(t, "info", cfg.GetLogLevel())
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.GetWorkers())
	assert.Equal(t, "isomodel", cfg.GetTopicPrefix())
}

func TestLogLevelEnvOverride(t *testing.T) {
	t.Setenv(LogLevelEnv, "trace")
	cfg := &Config{LogLevel: "debug"}
	assert.Equal(t, "trace", cfg.GetLogLevel())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "isomodel.yaml")
	cfg := &Config{DBPath: "runs.db", Workers: 2, MQTT: MQTTConfig{Broker: "mqtt:1883"}}
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# isomodel configuration\n"))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file left behind")
}

func TestSaveReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isomodel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 9\n"), 0644))

	require.NoError(t, Save(path, &Config{Workers: 3}))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Workers)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestResolved(t *testing.T) {
	t.Setenv(LogLevelEnv, "trace")
	cfg := &Config{DefaultsFile: "defaults.ism", MQTT: MQTTConfig{TopicPrefix: "site/"}}

	got := cfg.Resolved()
	assert.Equal(t, "defaults.ism", got.DefaultsFile)
	assert.Equal(t, "isomodel.db", got.DBPath)
	assert.Equal(t, "info", got.LogLevel)
	assert.Equal(t, runtime.GOMAXPROCS(0), got.Workers)
	assert.Equal(t, "site", got.MQTT.TopicPrefix)
	assert.Empty(t, cfg.DBPath, "receiver is not modified")
}
