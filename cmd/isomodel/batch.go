package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/batch"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	batchDefaults string
	batchMode     string
	batchSave     bool
	batchWorkers  int
	batchOverride map[string]string
)

var batchCmd = &cobra.Command{
	Use:   "batch <building>...",
	Short: "Simulate many buildings in parallel",
	Long:  `Simulates every building concurrently, sharing parsed weather files, and prints
annual totals in the order the buildings were given. A building that fails to
load is reported and does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchDefaults, "defaults", "", "defaults .ism file applied to every building (default from config)")
	batchCmd.Flags().StringVar(&batchMode, "mode", "monthly", "monthly, hourly (by month) or hourly-by-hour")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "store successful runs in the database")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "parallel simulations (default from config)")
	batchCmd.Flags().StringToStringVar(&batchOverride, "set", nil, "override a property in every building, e.g. --set bemType=advanced (repeatable)")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	mode, err := batch.ParseMode(batchMode)
	if err != nil {
		return err
	}

	workers := batchWorkers
	if workers <= 0 {
		workers = appConfig.GetWorkers()
	}

	defaults := defaultsFile(batchDefaults)
	jobs := make([]batch.Job, len(args))
	for i, path := range args {
		jobs[i] = batch.Job{Building: path, Defaults: defaults, Overrides: batchOverride}
	}

	results, err := batch.RunAll(cmd.Context(), jobs, mode, workers)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("%-32s  FAILED: %v\n", filepath.Base(r.Job.Building), r.Err)
			continue
		}
		fmt.Printf("%-32s  %12s kWh/m²  %s\n",
			filepath.Base(r.Job.Building),
			humanize.FormatFloat("#,###.##", r.Total()),
			r.Elapsed.Round(time.Millisecond))
	}

	if batchSave {
		if err := saveResults(results); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d buildings failed", failed, len(results))
	}
	return nil
}

func saveResults(results []batch.Result) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	saved := 0
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		run := r.Run()
		if err := db.InsertRun(&run); err != nil {
			return fmt.Errorf("saving run for %s: %w", r.Job.Building, err)
		}
		saved++
	}
	fmt.Printf("Saved %d runs\n", saved)
	return nil
}
