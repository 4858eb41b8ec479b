package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/config"
	"github.com/spf13/cobra"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the isomodel config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with every default filled in",
	Long:  `Writes the current configuration, with defaults for the database path, log
level, worker count and MQTT topic prefix filled in, to the --config path.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	if err := writeConfig(path, appConfig, configForce); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// writeConfig saves the resolved cfg to path, refusing to replace an
// existing file unless force is set
func writeConfig(path string, cfg *config.Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking config file: %w", err)
		}
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	if err := config.Save(path, cfg.Resolved()); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}
