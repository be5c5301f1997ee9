package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockhook/internal/config"
)

type globalFlags struct {
	json     bool
	logLevel string
	apiURL   string
	token    string
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "stockhook",
		Short:         "Stockhook receives webhooks and keeps the newest ones on disk",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(flags.logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), warning)
			}
			if flags.apiURL != "" {
				cfg.APIURL = flags.apiURL
			}
			if flags.token != "" {
				cfg.Auth.Token = flags.token
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&flags.json, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "server URL for client commands")
	cmd.PersistentFlags().StringVar(&flags.token, "token", "", "token for client commands")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newSendCmd(cfg, &flags.json),
		newListCmd(cfg, &flags.json),
		newShowCmd(cfg, &flags.json),
		newRawCmd(cfg),
		newRmCmd(cfg, &flags.json),
		newPruneCmd(cfg, &flags.json),
		newSweepCmd(cfg, &flags.json),
		newConfigCmd(cfg),
		newHashTokenCmd(),
	)

	return cmd
}
