package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/batch"
	"github.com/Argonne-National-Laboratory/ISOmodel/pkg/isomodel"
	"github.com/spf13/cobra"
)

var (
	simulateDefaults      string
	simulateMonthly       bool
	simulateHourlyByMonth bool
	simulateHourlyByHour  bool
	simulateSave          bool
	simulateEndUse        string
	simulateOverrides     map[string]string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <building>",
	Short: "Simulate one building and print end uses as CSV",
	Long:  `Loads a building (and optional defaults file), runs the selected method and
prints one CSV row per period with every end use in kWh/m², followed by a total
row. The monthly method is used unless an hourly flag is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simulateDefaults, "defaults", "", "defaults .ism file (default from config)")
	simulateCmd.Flags().BoolVar(&simulateMonthly, "monthly", false, "use the monthly method")
	simulateCmd.Flags().BoolVar(&simulateHourlyByMonth, "hourly-by-month", false, "use the hourly method, summed by month")
	simulateCmd.Flags().BoolVar(&simulateHourlyByHour, "hourly-by-hour", false, "use the hourly method, one row per hour")
	simulateCmd.Flags().BoolVar(&simulateSave, "save", false, "store the run in the database")
	simulateCmd.Flags().StringVar(&simulateEndUse, "end-use", "", "only print this end use (e.g. ElecHeat)")
	simulateCmd.Flags().StringToStringVar(&simulateOverrides, "set", nil, "override a building property, e.g. --set terrainClass=0.5 (repeatable)")
	simulateCmd.MarkFlagsMutuallyExclusive("monthly", "hourly-by-month", "hourly-by-hour")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	mode := batch.Monthly
	switch {
	case simulateHourlyByMonth:
		mode = batch.HourlyByMonth
	case simulateHourlyByHour:
		mode = batch.HourlyByHour
	}

	uses := isomodel.AllEndUses()
	if simulateEndUse != "" {
		u, err := isomodel.ParseEndUse(simulateEndUse)
		if err != nil {
			return err
		}
		uses = []isomodel.EndUse{u}
	}

	job := batch.Job{Building: args[0], Defaults: defaultsFile(simulateDefaults), Overrides: simulateOverrides}
	res := batch.Simulate(cmd.Context(), nil, job, mode)
	if res.Err != nil {
		return fmt.Errorf("simulating %s: %w", job.Building, res.Err)
	}

	if err := writeEndUsesCSV(cmd.OutOrStdout(), res.EndUses, uses); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}

	if simulateSave {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		run := res.Run()
		if err := db.InsertRun(&run); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved run %s\n", run.ID)
	}
	return nil
}

// writeEndUsesCSV writes a period column, one column per end use and a
// total column, then a final row summing every period. When every end use is
// written, per-fuel columns come before the total.
func writeEndUsesCSV(out io.Writer, results []isomodel.EndUses, uses []isomodel.EndUse) error {
	w := csv.NewWriter(out)

	var fuels []isomodel.Fuel
	if len(uses) == isomodel.NumEndUses {
		fuels = []isomodel.Fuel{isomodel.Electricity, isomodel.Gas}
	}

	header := []string{"period"}
	for _, u := range uses {
		header = append(header, u.String())
	}
	for _, f := range fuels {
		header = append(header, f.String())
	}
	header = append(header, "total")
	if err := w.Write(header); err != nil {
		return err
	}

	sums := make([]float64, len(uses)+len(fuels))
	for i, e := range results {
		row := []string{strconv.Itoa(i + 1)}
		var total float64
		for j, u := range uses {
			v, err := e.EndUse(u)
			if err != nil {
				return err
			}
			sums[j] += v
			total += v
			row = append(row, formatValue(v))
		}
		for j, f := range fuels {
			v := e.FuelTotal(f)
			sums[len(uses)+j] += v
			row = append(row, formatValue(v))
		}
		row = append(row, formatValue(total))
		if err := w.Write(row); err != nil {
			return err
		}
	}

	row := []string{"total"}
	var total float64
	for j, v := range sums {
		if j < len(uses) {
			total += v
		}
		row = append(row, formatValue(v))
	}
	row = append(row, formatValue(total))
	if err := w.Write(row); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}
