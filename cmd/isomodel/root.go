package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/config"
	"github.com/Argonne-National-Laboratory/ISOmodel/internal/database"
	"github.com/Argonne-National-Laboratory/ISOmodel/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	dbPath   string
	logLevel string

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "isomodel",
	Short: "Estimate building energy use with the ISO 13790 monthly and hourly methods",
	Long:  `isomodel reads building descriptions (.ism or YAML) and an EnergyPlus weather
file, runs the ISO 13790 monthly or simple hourly method, and reports energy use
intensity per end use in kWh/m². Runs can be stored in a local SQLite database
and published to MQTT or Home Assistant.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./isomodel.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default is ./isomodel.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: info, debug or trace")
}

// setup loads the config and puts the logger on the command context
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	appConfig = cfg

	level := logLevel
	if level == "" {
		level = cfg.GetLogLevel()
	}
	logger := logging.NewLogger(level, os.Stderr)
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	return nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getDBPath returns the database file path, preferring the flag over the config
func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if appConfig != nil {
		return appConfig.GetDBPath()
	}
	return "isomodel.db"
}

// defaultsFile returns the flag value or the configured defaults file
func defaultsFile(flag string) string {
	if flag != "" || appConfig == nil {
		return flag
	}
	return appConfig.DefaultsFile
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

// openDB opens the database connection
func openDB() (*database.DB, error) {
	path := getDBPath()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return database.New(path)
}
