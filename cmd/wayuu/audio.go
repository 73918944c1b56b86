package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/audio"
)

func newAudioCommand() *cobra.Command {
	rootCommand := cobra.Command{
		Use:   "audio",
		Short: "Audio corpus commands",
	}
	rootCommand.AddCommand(newAudioListCommand())
	rootCommand.AddCommand(newAudioSearchCommand())
	rootCommand.AddCommand(newAudioDownloadCommand())
	rootCommand.AddCommand(newAudioDownloadAllCommand())
	rootCommand.AddCommand(newAudioStatsCommand())
	rootCommand.AddCommand(newAudioClearCommand())
	return &rootCommand
}

// loadAudioManager loads the audio dataset into the app's manager so every
// audio subcommand starts from a disk-reconciled working set.
func loadAudioManager(app *app, cmd *cobra.Command) error {
	snapshot, err := app.coordinator.Audio(cmd.Context())
	if err != nil {
		return fmt.Errorf("coordinator.Audio() > %w", err)
	}
	app.manager.SetEntries(snapshot.Entries)
	return nil
}

func newAudioListCommand() *cobra.Command {
	var page int
	var pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audio entries page by page",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("newApp() > %w", err)
			}
			defer app.close()

			if err := loadAudioManager(app, cmd); err != nil {
				return err
			}

			entries, servedPage, total, totalPages := app.manager.List(page, pageSize)
			enriched, err := app.manager.EnrichWithDurations(entries)
			if err != nil {
				return fmt.Errorf("manager.EnrichWithDurations() > %w", err)
			}

			for _, entry := range enriched {
				state := " "
				if entry.IsDownloaded {
					state = "*"
				}
				fmt.Printf("%s %s  %5.1fs  %s\n", state, entry.ID, entry.DurationSeconds, entry.Transcription)
			}
			fmt.Printf("Page %d of %d (%d entries)\n", servedPage, totalPages, total)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "Entries per page, at most 100")
	return cmd
}

func newAudioSearchCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search audio entries by transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("newApp() > %w", err)
			}
			defer app.close()

			if err := loadAudioManager(app, cmd); err != nil {
				return err
			}

			matches, total := app.manager.SearchByTranscription(args[0], limit)
			for _, entry := range matches {
				fmt.Printf("%s  %s\n", entry.ID, entry.Transcription)
			}
			fmt.Printf("%d of %d matches shown\n", len(matches), total)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum results to show, at most 50")
	return cmd
}

func reportDownloadResults(results []audio.DownloadResult) {
	succeeded := 0
	for _, result := range results {
		if result.Success {
			succeeded++
			continue
		}
		color.Red("%s: %s", result.ID, result.Error)
	}
	color.Green("%d of %d downloads succeeded", succeeded, len(results))
}

func newAudioDownloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "download <id>...",
		Short: "Download specific audio files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("newApp() > %w", err)
			}
			defer app.close()

			if err := loadAudioManager(app, cmd); err != nil {
				return err
			}

			results := app.manager.DownloadBatch(cmd.Context(), args, app.cfg.Audio.BatchSize)
			reportDownloadResults(results)
			return nil
		},
	}
}

func newAudioDownloadAllCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "download-all",
		Short: "Download every pending audio file, high priority first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("newApp() > %w", err)
			}
			defer app.close()

			if err := loadAudioManager(app, cmd); err != nil {
				return err
			}

			results := app.manager.DownloadAll(cmd.Context(), app.cfg.Audio.BatchSize)
			reportDownloadResults(results)
			return nil
		},
	}
}

func newAudioStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show audio download statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("newApp() > %w", err)
			}
			defer app.close()

			if err := loadAudioManager(app, cmd); err != nil {
				return err
			}

			stats := app.manager.DownloadStats()
			fmt.Printf("Entries: %d\n", stats.TotalEntries)
			fmt.Printf("Downloaded: %d\n", stats.Downloaded)
			fmt.Printf("Pending: %d\n", stats.Pending)
			fmt.Printf("Disk usage: %d bytes\n", stats.TotalSizeBytes)
			return nil
		},
	}
}

func newAudioClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all downloaded audio files",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("newApp() > %w", err)
			}
			defer app.close()

			if err := loadAudioManager(app, cmd); err != nil {
				return err
			}

			removed, err := app.manager.ClearDownloaded()
			if err != nil {
				return fmt.Errorf("manager.ClearDownloaded() > %w", err)
			}
			fmt.Printf("Removed %d files\n", removed)
			return nil
		},
	}
}
