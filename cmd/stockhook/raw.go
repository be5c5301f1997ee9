package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"stockhook/internal/api"
	"stockhook/internal/config"
	"stockhook/internal/hookstore"
	"stockhook/internal/render"
)

var errBinaryToTerminal = errors.New("refusing to write a binary body to the terminal; use -o FILE or --force")

type rawOptions struct {
	output string
	force  bool
}

func newRawCmd(cfg *config.Config) *cobra.Command {
	opts := rawOptions{}

	cmd := &cobra.Command{
		Use:   "raw <id>",
		Short: "Download the raw body of a record",
		Args:  requireExactlyArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				return runRaw(cmd, client, args[0], opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to a new file instead of stdout")
	cmd.Flags().BoolVar(&opts.force, "force", false, "write binary bodies to a terminal anyway")
	return cmd
}

func runRaw(cmd *cobra.Command, client *api.Client, id string, opts rawOptions) error {
	ctx := cmd.Context()
	if opts.output == "" || opts.output == "-" {
		if !opts.force && stdoutIsTerminal() {
			if err := refuseBinary(ctx, client, id); err != nil {
				return err
			}
		}
		_, err := client.DownloadRaw(ctx, id, cmd.OutOrStdout())
		return err
	}

	f, err := os.OpenFile(opts.output, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	n, err := client.DownloadRaw(ctx, id, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(opts.output)
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s to %s\n", render.Bytes(n), opts.output)
	return nil
}

func refuseBinary(ctx context.Context, client *api.Client, id string) error {
	record, err := client.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	if _, ok := record.Decoded.(hookstore.DecodedBase64); ok {
		return errBinaryToTerminal
	}
	return nil
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
