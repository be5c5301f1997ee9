package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"stockhook/internal/config"
	"stockhook/internal/hookstore"
	"stockhook/internal/render"
)

func newSweepCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := hookstore.SweepOptions{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove orphaned bodies and abandoned temp files",
		Long: "Remove body files no record references and temp files left by interrupted writes.\n" +
			"Only files older than the grace period are touched, so a running server is safe.",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cfg, slog.Default().With("component", "hookstore"))
			if err != nil {
				return err
			}
			result, err := st.Sweep(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(result)
			}

			verb := "removed"
			if result.DryRun {
				verb = "would remove"
			}
			for _, name := range result.OrphanBlobs {
				if err := writePlain("%s orphan %s\n", verb, name); err != nil {
					return err
				}
			}
			for _, name := range result.StaleTemps {
				if err := writePlain("%s temp %s\n", verb, name); err != nil {
					return err
				}
			}
			return writePlain("%s %d files, %s (failed %d)\n", verb,
				len(result.OrphanBlobs)+len(result.StaleTemps), render.Bytes(result.ReclaimedBytes), result.Failed)
		},
	}

	cmd.Flags().DurationVar(&opts.Grace, "grace", hookstore.DefaultSweepGrace, "only touch files older than this")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report without deleting")
	return cmd
}
