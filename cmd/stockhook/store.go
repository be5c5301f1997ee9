package main

import (
	"log/slog"

	"stockhook/internal/config"
	"stockhook/internal/hookstore"
)

func openStore(cfg *config.Config, logger *slog.Logger) (*hookstore.Store, error) {
	return hookstore.Open(hookstore.Options{
		Dir:          cfg.DataDir,
		MaxBodyBytes: cfg.Store.MaxBodyBytes,
		PreviewBytes: cfg.Store.PreviewBytes,
		KeepCount:    cfg.Store.MaxRecords,
		Logger:       logger,
	})
}
