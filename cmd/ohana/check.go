package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ohana/internal/core"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load the configured dataset, build a snapshot, and report its size or its problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			snap, err := openSnapshot(cmd.Context(), cfg.Storage)
			if err != nil {
				printProblems(cmd.ErrOrStderr(), err)
				return err
			}
			stats := snap.Stats()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			fmt.Fprintf(out, "people=%d locations=%d edges=%d person_tokens=%d place_tokens=%d\n",
				stats.People, stats.Locations, stats.Edges, stats.PersonTokens, stats.PlaceTokens)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print snapshot stats as JSON")
	return cmd
}

// printProblems lists each build problem on its own line.
func printProblems(w io.Writer, err error) {
	var buildErr *core.BuildError
	if !errors.As(err, &buildErr) {
		return
	}
	for _, p := range buildErr.Problems {
		fmt.Fprintf(w, "%s %s %d: %s\n", p.Rule, p.Entity, p.EntityID, p.Message)
	}
}
