package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ohana/internal/core"
	"ohana/internal/dataset"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate a JSON or YAML dataset document and write it to the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if core.StorageDriver(cfg.Storage.Driver) == core.StorageMemory {
				return errors.New("the memory driver serves a built-in sample and cannot be seeded")
			}
			ds, err := dataset.ReadFile(from)
			if err != nil {
				return err
			}
			snap, err := core.Build(ds)
			if err != nil {
				printProblems(cmd.ErrOrStderr(), err)
				return err
			}

			ctx := cmd.Context()
			store, err := core.OpenDatasetStore(ctx, cfg.Storage)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			if err := store.Save(ctx, ds); err != nil {
				return fmt.Errorf("save dataset: %w", err)
			}
			stats := snap.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s backend: %d people, %d locations\n", cfg.Storage.Driver, stats.People, stats.Locations)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "dataset document (.json, .yaml or .yml)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
