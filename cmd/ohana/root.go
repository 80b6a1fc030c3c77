package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ohana/internal/config"
	"ohana/internal/core"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "ohana",
		Short:         "Query a family tree: people, places, and the relationships between them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file (OHANA_* env vars override it)")
	root.AddCommand(newServeCmd(opts), newSeedCmd(opts), newCheckCmd(opts))
	return root
}

func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openSnapshot opens the configured backend and builds a snapshot from it.
// The backend is closed before returning; the snapshot owns copies of every record.
func openSnapshot(ctx context.Context, cfg config.Storage) (*core.Snapshot, error) {
	store, err := core.OpenDatasetStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()
	return core.LoadSnapshot(ctx, store)
}
