package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stockhook/internal/auth"
	"stockhook/internal/config"
	"stockhook/internal/render"
	"stockhook/internal/server"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "srv",
		Short: "Run the webhook receiver",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if listen != "" {
				cfg.Listen = listen
			}

			logger := slog.Default().With("component", "server")

			st, err := openStore(cfg, slog.Default().With("component", "hookstore"))
			if err != nil {
				return err
			}
			logger.Info("opened store", "dir", st.Dir(), "max_body_bytes", st.MaxBodyBytes(), "max_records", cfg.Store.MaxRecords)

			loc, err := cfg.Location()
			if err != nil {
				logger.Warn("falling back to UTC", "error", err)
			}

			srv := server.New(st, render.NewRenderer(loc), server.Options{
				Addr:           cfg.Listen,
				RenderMaxBytes: cfg.UI.RenderMaxBytes,
				ListLimit:      cfg.UI.ListLimit,
				Verifier:       auth.NewVerifier(cfg.Auth.Token, cfg.Auth.TokenHash),
				ProtectReads:   cfg.Auth.ProtectReads,
				AllowedOrigins: cfg.CORS.AllowedOrigins,
			}, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (host:port)")
	return cmd
}
