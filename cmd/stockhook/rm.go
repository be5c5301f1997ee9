package main

import (
	"github.com/spf13/cobra"

	"stockhook/internal/api"
	"stockhook/internal/config"
)

func newRmCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id> [<id>...]",
		Short: "Delete records and their bodies",
		Args:  requireAtLeastOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				deleted := make([]api.DeleteResponse, 0, len(args))
				for _, id := range args {
					resp, err := client.DeleteRecord(cmd.Context(), id)
					if err != nil {
						return err
					}
					deleted = append(deleted, resp)
					if !*jsonOutput {
						if err := writePlain("deleted %s\n", resp.ID); err != nil {
							return err
						}
					}
				}
				if *jsonOutput {
					return writeJSON(deleted)
				}
				return nil
			})
		},
	}

	return cmd
}
