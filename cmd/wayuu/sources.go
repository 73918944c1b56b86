package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/sources"
)

func newSourcesCommand() *cobra.Command {
	rootCommand := cobra.Command{
		Use:   "sources",
		Short: "Remote source registry commands",
	}
	rootCommand.AddCommand(newSourcesListCommand())
	rootCommand.AddCommand(newSourcesAddCommand())
	rootCommand.AddCommand(newSourcesUpdateCommand())
	rootCommand.AddCommand(newSourcesToggleCommand())
	rootCommand.AddCommand(newSourcesRemoveCommand())
	return &rootCommand
}

func printSource(source sources.Source) {
	state := "inactive"
	if source.IsActive {
		state = "active"
	}
	fmt.Printf("%s  %-10s  priority %d  %s  %s/%s/%s (%s)\n",
		source.ID, source.Kind, source.Priority, state, source.Dataset, source.Config, source.Split, source.Name)
}

func newSourcesListCommand() *cobra.Command {
	var showAll bool
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered dataset sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("newApp() > %w", err)
			}
			defer app.close()

			all, err := app.repository.FindAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("repository.FindAll() > %w", err)
			}
			for _, source := range all {
				if !showAll && !source.IsActive {
					continue
				}
				if kind != "" && !source.Matches(sources.Kind(kind)) {
					continue
				}
				printSource(source)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showAll, "all", false, "Include inactive sources")
	cmd.Flags().StringVar(&kind, "kind", "", "Only sources serving this kind: dictionary or audio")
	return cmd
}

func newSourcesAddCommand() *cobra.Command {
	var name string
	var dataset string
	var datasetConfig string
	var split string
	var kind string
	var priority int

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Register a new dataset source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("newApp() > %w", err)
			}
			defer app.close()

			source := sources.Source{
				ID:       args[0],
				Name:     name,
				Dataset:  dataset,
				Config:   datasetConfig,
				Split:    split,
				Kind:     sources.Kind(kind),
				IsActive: true,
				Priority: priority,
			}
			if err := app.repository.Add(cmd.Context(), &source); err != nil {
				return fmt.Errorf("repository.Add() > %w", err)
			}
			printSource(source)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "Human readable source name")
	flags.StringVar(&dataset, "dataset", "", "Remote dataset identifier, e.g. org/name")
	flags.StringVar(&datasetConfig, "dataset-config", "default", "Dataset configuration name")
	flags.StringVar(&split, "split", "train", "Dataset split")
	flags.StringVar(&kind, "kind", string(sources.KindDictionary), "Source kind: dictionary, audio or mixed")
	flags.IntVar(&priority, "priority", 0, "Merge priority; 0 appends after existing sources")
	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

func newSourcesUpdateCommand() *cobra.Command {
	var name string
	var dataset string
	var priority int

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a registered source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("newApp() > %w", err)
			}
			defer app.close()

			var patch sources.Patch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("dataset") {
				patch.Dataset = &dataset
			}
			if cmd.Flags().Changed("priority") {
				patch.Priority = &priority
			}

			updated, err := app.repository.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return fmt.Errorf("repository.Update() > %w", err)
			}
			if updated == nil {
				return fmt.Errorf("unknown source: %s", args[0])
			}
			printSource(*updated)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "Human readable source name")
	flags.StringVar(&dataset, "dataset", "", "Remote dataset identifier, e.g. org/name")
	flags.IntVar(&priority, "priority", 0, "Merge priority")
	return cmd
}

func newSourcesToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Activate or deactivate a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("newApp() > %w", err)
			}
			defer app.close()

			toggled, err := app.repository.Toggle(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("repository.Toggle() > %w", err)
			}
			if toggled == nil {
				return fmt.Errorf("unknown source: %s", args[0])
			}
			printSource(*toggled)
			return nil
		},
	}
}

func newSourcesRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a source from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("newApp() > %w", err)
			}
			defer app.close()

			removed, err := app.repository.Remove(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("repository.Remove() > %w", err)
			}
			if !removed {
				return fmt.Errorf("unknown source: %s", args[0])
			}
			fmt.Printf("Removed %s\n", args[0])
			return nil
		},
	}
}
