package main

import (
	"github.com/spf13/cobra"

	"stockhook/internal/api"
	"stockhook/internal/config"
)

func newListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.ListRecords(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeRecordList(resp.Records)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "limit results (default: server list limit)")
	return cmd
}
