package main

import (
	"fmt"
	"strings"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/database"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run",
	Long:  `Removes a run and its period results. The ID may be shortened to any unique prefix, such as the one list prints.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	id, err := resolveRunID(db, args[0])
	if err != nil {
		return err
	}
	if err := db.DeleteRun(id); err != nil {
		return err
	}
	fmt.Printf("Deleted run %s\n", id)
	return nil
}

// resolveRunID expands a unique ID prefix to the full run ID
func resolveRunID(db *database.DB, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("empty run ID")
	}

	runs, err := db.ListRuns(0)
	if err != nil {
		return "", fmt.Errorf("listing runs: %w", err)
	}

	var matches []string
	for _, run := range runs {
		if run.ID == prefix {
			return run.ID, nil
		}
		if strings.HasPrefix(run.ID, prefix) {
			matches = append(matches, run.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("run %s not found", prefix)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("run ID %s is ambiguous (%d matches)", prefix, len(matches))
}
