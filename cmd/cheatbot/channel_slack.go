//go:build slack

package main

import (
	"fmt"
	"log/slog"

	"cheatbot/internal/adapter/channel"
	"cheatbot/internal/domain"
	"cheatbot/internal/infra/config"
)

func buildSlackChannel(sc config.SlackConfig, log *slog.Logger) (domain.Channel, error) {
	if sc.BotToken == "" {
		return nil, fmt.Errorf("slack.bot_token is required")
	}
	var opts []channel.SlackOption
	if len(sc.ChannelIDs) > 0 {
		opts = append(opts, channel.WithSlackChannels(sc.ChannelIDs))
	}
	return channel.NewSlackChannel(sc.BotToken, sc.AppToken, log, opts...), nil
}
