package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/translation"
)

func newLookupCommand() *cobra.Command {
	direction := translation.DirectionWayuuToSpanish

	cmd := &cobra.Command{
		Use:   "lookup <text>",
		Short: "Translate a word or phrase using the bilingual dictionary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := args[0]
			ctx := cmd.Context()

			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("newApp() > %w", err)
			}
			defer app.close()

			snapshot, err := app.coordinator.Dictionary(ctx)
			if err != nil {
				return fmt.Errorf("coordinator.Dictionary() > %w", err)
			}

			engine := translation.NewEngine(snapshot.Metadata.SourceID)
			result := engine.FindExact(snapshot.Entries, text, direction)
			if result == nil {
				result = engine.FindFuzzy(snapshot.Entries, text, direction)
			}
			if result == nil {
				color.Red(`No translation found for "%s"`, text)
				return nil
			}

			color.Green(`%s`, result.TranslatedText)
			fmt.Printf("Confidence: %.0f%%\n", result.Confidence*100)
			if result.ContextInfo != "" {
				fmt.Println(result.ContextInfo)
			}
			for _, alternative := range result.Alternatives {
				fmt.Printf("  - %s\n", alternative)
			}
			return nil
		},
	}
	cmd.Flags().Var(&direction, "direction", fmt.Sprintf("Translation direction. Possible values are %v", translation.AllDirections))
	return cmd
}
