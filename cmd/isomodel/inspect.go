package main

import (
	"fmt"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/properties"
	"github.com/Argonne-National-Laboratory/ISOmodel/pkg/isomodel"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	inspectDefaults string
	inspectAll      bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <building>",
	Short: "Print the parameters a building loads to",
	Long:  `Loads a building with its defaults and prints the resolved files and every parameter group as YAML.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectDefaults, "defaults", "", "defaults .ism file (default from config)")
	inspectCmd.Flags().BoolVar(&inspectAll, "all", false, "also list every raw property after merging the building and defaults files")
	rootCmd.AddCommand(inspectCmd)
}

// inspection is the YAML document printed by inspect
type inspection struct {
	Building     string          `yaml:"building"`
	Defaults     string          `yaml:"defaults,omitempty"`
	WeatherFile  string          `yaml:"weather_file"`
	ScheduleFile string          `yaml:"schedule_file,omitempty"`
	Station      string          `yaml:"station"`
	TerrainClass float64         `yaml:"terrain_class"`
	Params       isomodel.Params `yaml:"params"`
	Properties   []string        `yaml:"properties,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	defaults := defaultsFile(inspectDefaults)
	m := isomodel.NewUserModel()
	if err := m.LoadContext(cmd.Context(), args[0], defaults); err != nil {
		return fmt.Errorf("loading building: %w", err)
	}

	doc := inspection{
		Building:     m.BuildingPath(),
		Defaults:     m.DefaultsPath(),
		WeatherFile:  m.WeatherFilePath(),
		ScheduleFile: m.ScheduleFilePath(),
		TerrainClass: m.TerrainClass(),
		Params:       m.Params(),
	}
	if w := m.Weather(); w != nil {
		doc.Station = fmt.Sprintf("%s (%s)", w.Data.City, w.Data.StationID)
	}

	if inspectAll {
		props, err := rawProperties(args[0], defaults)
		if err != nil {
			return err
		}
		doc.Properties = props
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding parameters: %w", err)
	}
	return enc.Close()
}

// rawProperties returns "key = value" for every merged property, sorted by key
func rawProperties(building, defaults string) ([]string, error) {
	paths := []string{building}
	if defaults != "" {
		paths = append(paths, defaults)
	}
	props, err := properties.Load(paths...)
	if err != nil {
		return nil, fmt.Errorf("reading properties: %w", err)
	}

	lines := make([]string, 0, props.Len())
	for _, key := range props.Keys() {
		value, _ := props.Get(key)
		lines = append(lines, key+" = "+value)
	}
	return lines, nil
}
