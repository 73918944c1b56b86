package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/translation"
)

func newSyncCommand() *cobra.Command {
	rootCommand := cobra.Command{
		Use:   "sync",
		Short: "Dataset synchronization commands",
	}
	rootCommand.AddCommand(newSyncReloadCommand())
	rootCommand.AddCommand(newSyncStatusCommand())
	return &rootCommand
}

func newSyncReloadCommand() *cobra.Command {
	var clearCache bool
	dataset := translation.DatasetDictionary

	cmd := &cobra.Command{
		Use:   "reload",
		Short: "Re-fetch a dataset from its remote sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("newApp() > %w", err)
			}
			defer app.close()

			if err := app.coordinator.ForceReload(ctx, dataset, clearCache); err != nil {
				return fmt.Errorf("coordinator.ForceReload() > %w", err)
			}

			stats := app.coordinator.Stats()[dataset]
			fmt.Printf("Reloaded %s: %d entries from %s\n", dataset, stats.Entries, stats.Origin)
			return nil
		},
	}
	cmd.Flags().Var(&dataset, "dataset", fmt.Sprintf("Dataset to reload. Possible values are %v", translation.AllDatasets))
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Remove the disk cache before fetching")
	return cmd
}

func newSyncStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the working set and disk cache state of each dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("newApp() > %w", err)
			}
			defer app.close()

			// Load both datasets so the report reflects a usable working set.
			if _, err := app.coordinator.Dictionary(cmd.Context()); err != nil {
				return fmt.Errorf("coordinator.Dictionary() > %w", err)
			}
			if _, err := app.coordinator.Audio(cmd.Context()); err != nil {
				return fmt.Errorf("coordinator.Audio() > %w", err)
			}

			stats := app.coordinator.Stats()
			for _, dataset := range translation.AllDatasets {
				datasetStats := stats[dataset]
				staleness := "fresh"
				if datasetStats.Stale {
					staleness = "stale"
				}
				fmt.Printf("%s: %d entries, origin %s, loaded at %s (%s)\n",
					dataset,
					datasetStats.Entries,
					datasetStats.Origin,
					datasetStats.LoadedAt.Format("2006-01-02 15:04:05"),
					staleness,
				)

				info := app.store.Describe(dataset)
				if !info.Exists {
					fmt.Println("  disk cache: absent")
					continue
				}
				fmt.Printf("  disk cache: %d entries, %d bytes, updated %s\n",
					info.Metadata.TotalEntries,
					info.SizeBytes,
					info.Metadata.LastUpdated.Format("2006-01-02 15:04:05"),
				)
			}
			return nil
		},
	}
}
