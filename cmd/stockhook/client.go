package main

import (
	"stockhook/internal/api"
	"stockhook/internal/config"
)

func withClient(cfg *config.Config, fn func(*api.Client) error) error {
	return fn(api.NewClient(cfg.APIURL, cfg.Auth.Token))
}
