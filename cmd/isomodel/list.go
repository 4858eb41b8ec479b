package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored simulation runs",
	Long:  `Displays stored runs from the database, newest first.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum number of runs to show (0 = all)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	// Open database
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(listLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	fmt.Println("--------------------------------------------------------------------------------")
	fmt.Printf("%-8s  %-24s  %-7s  %12s  %-14s  %s\n", "ID", "Building", "Method", "kWh/m²", "Created", "Published")
	fmt.Println("--------------------------------------------------------------------------------")

	for _, run := range runs {
		published := "no"
		if run.Published {
			published = "yes"
		}
		fmt.Printf("%-8s  %-24s  %-7s  %12s  %-14s  %s\n",
			shortID(run.ID),
			filepath.Base(run.BuildingPath),
			run.Method,
			humanize.FormatFloat("#,###.##", run.TotalEUI),
			humanize.Time(run.CreatedAt),
			published)
	}

	fmt.Println("--------------------------------------------------------------------------------")
	fmt.Printf("%s runs\n", humanize.Comma(int64(len(runs))))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
