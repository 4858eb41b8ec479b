package main

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/batch"
	"github.com/Argonne-National-Laboratory/ISOmodel/pkg/isomodel"
	"github.com/spf13/cobra"
)

var (
	compareDefaults string
	compareFormat   string
)

var compareCmd = &cobra.Command{
	Use:   "compare <building>",
	Short: "Compare annual end uses from the monthly and hourly methods",
	Long:  `Runs both methods on the same building and prints annual kWh/m² per end use side by side.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareDefaults, "defaults", "", "defaults .ism file (default from config)")
	compareCmd.Flags().StringVar(&compareFormat, "format", "csv", "output format: csv or md")
	rootCmd.AddCommand(compareCmd)
}

// comparison is one end use's annual total under each method
type comparison struct {
	EndUse  isomodel.EndUse
	Monthly float64
	Hourly  float64
}

// Difference returns the hourly result relative to the monthly one in percent,
// or zero when the monthly result is zero
func (c comparison) Difference() float64 {
	if c.Monthly == 0 {
		return 0
	}
	return (c.Hourly - c.Monthly) / c.Monthly * 100
}

func runCompare(cmd *cobra.Command, args []string) error {
	if compareFormat != "csv" && compareFormat != "md" {
		return fmt.Errorf("unknown format %q (csv or md)", compareFormat)
	}

	job := batch.Job{Building: args[0], Defaults: defaultsFile(compareDefaults)}
	cache := isomodel.NewWeatherCache()

	monthly := batch.Simulate(cmd.Context(), cache, job, batch.Monthly)
	if monthly.Err != nil {
		return fmt.Errorf("simulating %s: %w", job.Building, monthly.Err)
	}
	hourly := batch.Simulate(cmd.Context(), cache, job, batch.HourlyByMonth)
	if hourly.Err != nil {
		return fmt.Errorf("simulating %s: %w", job.Building, hourly.Err)
	}

	rows := compareResults(monthly.EndUses, hourly.EndUses)
	if compareFormat == "md" {
		return writeComparisonMarkdown(cmd.OutOrStdout(), rows)
	}
	return writeComparisonCSV(cmd.OutOrStdout(), rows)
}

// compareResults sums both result sets per end use and appends a Total row
// keyed by NumEndUses
func compareResults(monthly, hourly []isomodel.EndUses) []comparison {
	var rows []comparison
	total := comparison{EndUse: isomodel.NumEndUses}
	for _, u := range isomodel.AllEndUses() {
		c := comparison{EndUse: u}
		for _, e := range monthly {
			v, _ := e.EndUse(u)
			c.Monthly += v
		}
		for _, e := range hourly {
			v, _ := e.EndUse(u)
			c.Hourly += v
		}
		total.Monthly += c.Monthly
		total.Hourly += c.Hourly
		rows = append(rows, c)
	}
	return append(rows, total)
}

func label(u isomodel.EndUse) string {
	if u.Valid() {
		return u.String()
	}
	return "Total"
}

func writeComparisonCSV(out io.Writer, rows []comparison) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"end_use", "monthly", "hourly", "difference_pct"}); err != nil {
		return err
	}
	for _, c := range rows {
		record := []string{label(c.EndUse), formatValue(c.Monthly), formatValue(c.Hourly), fmt.Sprintf("%.1f", c.Difference())}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeComparisonMarkdown(out io.Writer, rows []comparison) error {
	if _, err := fmt.Fprintln(out, "| End use | Monthly (kWh/m²) | Hourly (kWh/m²) | Difference |"); err != nil {
		return err
	}
	fmt.Fprintln(out, "|---|---:|---:|---:|")
	for _, c := range rows {
		fmt.Fprintf(out, "| %s | %.3f | %.3f | %+.1f%% |\n", label(c.EndUse), c.Monthly, c.Hourly, c.Difference())
	}
	return nil
}
