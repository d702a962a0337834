package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
// Chat surface credentials are checked separately by ValidateSurfaces.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateBot(cfg, ve)
	validateCommand(cfg, ve)
	validateCheatSh(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// ValidateSurfaces checks that at least one chat surface is enabled and that
// every enabled surface has its credentials.
func ValidateSurfaces(cfg *Config) error {
	ve := &ValidationError{}
	if !cfg.Discord.Enabled && !cfg.Slack.Enabled {
		ve.Add("no chat surface enabled (set discord.enabled or slack.enabled)")
	}
	if cfg.Discord.Enabled && cfg.Discord.Token == "" {
		ve.Add("discord.token is required (set via CHEATBOT_DISCORD_TOKEN)")
	}
	if cfg.Slack.Enabled {
		if cfg.Slack.BotToken == "" {
			ve.Add("slack.bot_token is required (set via CHEATBOT_SLACK_BOT_TOKEN)")
		}
		if cfg.Slack.AppToken == "" {
			ve.Add("slack.app_token is required (set via CHEATBOT_SLACK_APP_TOKEN)")
		}
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateBot(cfg *Config, ve *ValidationError) {
	if cfg.Bot.Prefix == "" {
		ve.Add("bot.prefix must not be empty")
	} else if strings.ContainsAny(cfg.Bot.Prefix, " \t\n") {
		ve.Add("bot.prefix %q must not contain whitespace", cfg.Bot.Prefix)
	}
	if len(cfg.Bot.ErrorReplies) == 0 {
		ve.Add("bot.error_replies must not be empty")
	}
	for i, r := range cfg.Bot.ErrorReplies {
		if strings.TrimSpace(r) == "" {
			ve.Add("bot.error_replies[%d] must not be blank", i)
		}
	}
	if cfg.Bot.AccentColor < 0 || cfg.Bot.AccentColor > 0xffffff {
		ve.Add("bot.accent_color must be between 0x000000 and 0xffffff")
	}
}

func validateCommand(cfg *Config, ve *ValidationError) {
	c := cfg.Command
	if c.Name == "" {
		ve.Add("command.name must not be empty")
	}
	seen := map[string]bool{c.Name: true}
	for i, a := range c.Aliases {
		switch {
		case a == "":
			ve.Add("command.aliases[%d] must not be empty", i)
		case strings.ContainsAny(a, " \t\n"):
			ve.Add("command.aliases[%d] %q must not contain whitespace", i, a)
		case seen[a]:
			ve.Add("command.aliases[%d] %q is duplicated", i, a)
		}
		seen[a] = true
	}
	if c.Cooldown < 0 {
		ve.Add("command.cooldown must be >= 0")
	}
}

func validateCheatSh(cfg *Config, ve *ValidationError) {
	c := cfg.CheatSh
	u, err := url.Parse(c.BaseURL)
	if c.BaseURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		ve.Add("cheatsh.base_url %q must be an http(s) URL", c.BaseURL)
	}
	if c.Language == "" || strings.Contains(c.Language, "/") {
		ve.Add("cheatsh.language %q must be a single path segment", c.Language)
	}
	if c.Timeout <= 0 {
		ve.Add("cheatsh.timeout must be > 0")
	}
	if c.Heading == "" {
		ve.Add("cheatsh.heading must not be empty")
	}
}

var validLogLevels = map[string]bool{"": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
var validLogFormats = map[string]bool{"": true, "text": true, "json": true}

func validateLogger(cfg *Config, ve *ValidationError) {
	if !validLogLevels[strings.ToLower(cfg.Logger.Level)] {
		ve.Add("logger.level %q is invalid (want: debug, info, warn, error)", cfg.Logger.Level)
	}
	if !validLogFormats[strings.ToLower(cfg.Logger.Format)] {
		ve.Add("logger.format %q is invalid (want: text, json)", cfg.Logger.Format)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !cfg.Tracer.Enabled {
		return
	}
	switch cfg.Tracer.Exporter {
	case "", "noop", "stdout":
	default:
		ve.Add("tracer.exporter %q is invalid (want: noop, stdout)", cfg.Tracer.Exporter)
	}
}
