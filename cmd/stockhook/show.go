package main

import (
	"github.com/spf13/cobra"

	"stockhook/internal/api"
	"stockhook/internal/config"
)

func newShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a record",
		Args:  requireExactlyArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				record, err := client.GetRecord(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(record)
				}
				return writeRecordDetail(record)
			})
		},
	}

	return cmd
}
