//go:build !slack

package main

import (
	"fmt"
	"log/slog"

	"cheatbot/internal/domain"
	"cheatbot/internal/infra/config"
)

func buildSlackChannel(_ config.SlackConfig, _ *slog.Logger) (domain.Channel, error) {
	return nil, fmt.Errorf("slack channel requires build with -tags slack")
}
