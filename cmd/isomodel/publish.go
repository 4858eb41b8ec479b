package main

import (
	"fmt"
	"time"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/logging"
	"github.com/Argonne-National-Laboratory/ISOmodel/internal/publisher"
	"github.com/Argonne-National-Laboratory/ISOmodel/pkg/models"
	"github.com/spf13/cobra"
)

var (
	publishAll   bool
	publishLimit int
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish stored runs to MQTT and Home Assistant",
	Long:  `Reads stored simulation runs from the database and publishes them to the configured MQTT broker and/or Home Assistant.`,
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().BoolVar(&publishAll, "all", false, "Force republish all runs (ignore published flag)")
	publishCmd.Flags().IntVar(&publishLimit, "limit", 0, "Limit number of runs to publish (0 = no limit)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	log := logging.FromContext(cmd.Context())
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	// Create publisher
	pub, err := publisher.New(appConfig)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	// Open database
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	var runs []models.Run
	if publishAll {
		runs, err = db.ListRuns(publishLimit)
	} else {
		runs, err = db.ListUnpublishedRuns(publishLimit)
	}
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if len(runs) == 0 {
		if publishAll {
			fmt.Println("No runs found")
		} else {
			fmt.Println("No unpublished runs found")
		}
		return nil
	}

	fmt.Printf("Publishing %d runs...\n", len(runs))
	published := 0
	for i, summary := range runs {
		fmt.Printf("[%d/%d] Publishing %s (%s, %.2f kWh/m²)... ", i+1, len(runs), shortID(summary.ID), summary.Method, summary.TotalEUI)

		// List queries skip period results; load the full run
		run, err := db.GetRun(summary.ID)
		if err != nil || run == nil {
			fmt.Printf("FAILED: loading run: %v\n", err)
			continue
		}

		if err := pub.Publish(*run); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			continue
		}

		if err := db.MarkPublished(run.ID); err != nil {
			fmt.Printf("✓ (warning: failed to mark as published: %v)\n", err)
		} else {
			fmt.Printf("✓\n")
		}
		log.Debug("published run", "id", run.ID, "topic", pub.Topic(*run))
		published++
	}

	fmt.Printf("\nTotal runs published: %d/%d\n", published, len(runs))
	return nil
}
