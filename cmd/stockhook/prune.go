package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"stockhook/internal/config"
)

func newPruneCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Apply retention to the data directory now",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("keep") {
				keep = cfg.Store.MaxRecords
			}
			if keep <= 0 {
				return fmt.Errorf("--keep must be positive (store.max_records is %d)", cfg.Store.MaxRecords)
			}

			st, err := openStore(cfg, slog.Default().With("component", "hookstore"))
			if err != nil {
				return err
			}
			result, err := st.Enforce(cmd.Context(), keep)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(result)
			}
			return writePlain("kept %d, deleted %d, failed %d\n", result.Kept, result.Deleted, result.Failed)
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 0, "records to keep (default: store.max_records)")
	return cmd
}
