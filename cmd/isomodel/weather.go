package main

import (
	"fmt"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/weather"
	"github.com/spf13/cobra"
)

var weatherCmd = &cobra.Command{
	Use:   "weather <file.epw>",
	Short: "Print a weather file's station and monthly means",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeather,
}

func init() {
	rootCmd.AddCommand(weatherCmd)
}

var monthNames = [weather.MonthsInYear]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func runWeather(cmd *cobra.Command, args []string) error {
	w, err := weather.Load(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	d := w.Data
	s := w.Summary

	fmt.Fprintf(out, "Station:   %s (%s)\n", d.City, d.StationID)
	fmt.Fprintf(out, "Location:  %.2f, %.2f (UTC%+d)\n", d.Latitude, d.Longitude, d.TimeZone)
	fmt.Fprintln(out, "----------------------------------------------------------------------")
	fmt.Fprintf(out, "%-5s %8s %8s %6s %6s %8s", "Month", "DryBulb", "DewPt", "RH", "Wind", "GHI")
	for _, name := range weather.SurfaceNames {
		fmt.Fprintf(out, " %6s", name)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "----------------------------------------------------------------------")

	for m := 0; m < weather.MonthsInYear; m++ {
		fmt.Fprintf(out, "%-5s %8.1f %8.1f %6.0f %6.1f %8.1f",
			monthNames[m], s.DryBulb[m], s.DewPoint[m], s.RelHumidity[m], s.WindSpeed[m], s.GlobalHorizontal[m])
		for k := 0; k < weather.NumSurfaces; k++ {
			fmt.Fprintf(out, " %6.1f", s.Solar[m][k])
		}
		fmt.Fprintln(out)
	}
	return nil
}
