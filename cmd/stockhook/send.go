package main

import (
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"stockhook/internal/api"
	"stockhook/internal/config"
	"stockhook/internal/render"
)

func newSendCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:   "send [file|-]",
		Short: "Post a file or stdin to the webhook endpoint",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}

			body, size, err := openSendBody(cmd, path)
			if err != nil {
				return err
			}
			defer body.Close()

			if contentType == "" {
				contentType = guessContentType(path)
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Send(cmd.Context(), body, size, contentType)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("stored %s (%s, %s)\n", resp.ID, render.Bytes(resp.BodySize), resp.ContentType)
			})
		},
	}

	cmd.Flags().StringVar(&contentType, "content-type", "", "content type (guessed from the file extension when empty)")
	return cmd
}

// openSendBody opens path, or stdin for "-". size is -1 when unknown.
func openSendBody(cmd *cobra.Command, path string) (io.ReadCloser, int64, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), -1, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func guessContentType(path string) string {
	if path == "-" {
		return "text/plain; charset=utf-8"
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "text/markdown; charset=utf-8"
	case ".json":
		return "application/json"
	}
	if guessed := mime.TypeByExtension(filepath.Ext(path)); guessed != "" {
		return guessed
	}
	return "application/octet-stream"
}
