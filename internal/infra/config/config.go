package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"cheatbot/internal/domain"
)

// Config is the top-level application configuration.
type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	Command CommandConfig `yaml:"command"`
	CheatSh CheatShConfig `yaml:"cheatsh"`
	Discord DiscordConfig `yaml:"discord"`
	Slack   SlackConfig   `yaml:"slack"`
	Logger  LoggerConfig  `yaml:"logger"`
	Tracer  TracerConfig  `yaml:"tracer"`
}

// BotConfig holds settings shared by every chat surface.
type BotConfig struct {
	Prefix           string   `yaml:"prefix"`
	ErrorReplies     []string `yaml:"error_replies"`
	AccentColor      int      `yaml:"accent_color"`       // ErrorNotice color, e.g. 0xcd6d6d
	SupportChannelID string   `yaml:"support_channel_id"` // referenced in the usage help
}

// CommandConfig holds the cheat sheet command registration and gating.
type CommandConfig struct {
	Name                string        `yaml:"name"`
	Aliases             []string      `yaml:"aliases"`
	Cooldown            time.Duration `yaml:"cooldown"`             // per user
	AllowedRoles        []string      `yaml:"allowed_roles"`        // empty = everyone
	AllowedCategories   []string      `yaml:"allowed_categories"`   // channel categories
	WhitelistedChannels []string      `yaml:"whitelisted_channels"` // channels outside those categories
}

// CheatShConfig holds upstream cheat.sh settings.
type CheatShConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Language  string        `yaml:"language"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	Heading   string        `yaml:"heading"`
}

// DiscordConfig holds Discord gateway settings.
type DiscordConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	GuildID string `yaml:"guild_id,omitempty"`
}

// SlackConfig holds Slack socket mode settings.
type SlackConfig struct {
	Enabled    bool     `yaml:"enabled"`
	BotToken   string   `yaml:"bot_token"`
	AppToken   string   `yaml:"app_token"`
	ChannelIDs []string `yaml:"channel_ids,omitempty"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Output    string `yaml:"output"`
	AddSource bool   `yaml:"add_source"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Exporter    string `yaml:"exporter"`
	ServiceName string `yaml:"service_name"`
}

// DefaultErrorReplies are the titles of the "unknown cheat sheet" notice.
var DefaultErrorReplies = []string{
	"Please don't do that.",
	"You have to stop.",
	"Do you mind?",
	"In the future, don't do that.",
	"That was a mistake.",
	"You blew it.",
	"You're bad at computers.",
	"Are you trying to kill me?",
	"Noooooo!!",
	"I can't believe you've done this",
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Bot: BotConfig{
			Prefix:           ".",
			ErrorReplies:     append([]string(nil), DefaultErrorReplies...),
			AccentColor:      0xcd6d6d,
			SupportChannelID: "635950537262759947",
		},
		Command: CommandConfig{
			Name:              "cheat",
			Aliases:           []string{"cht.sh", "cheatsheet", "cheat-sheet", "cht"},
			Cooldown:          10 * time.Second,
			AllowedCategories: []string{"696958401460043776"},
			WhitelistedChannels: []string{
				"267659945086812160",
				"607247579608121354",
				"291284109232308226",
				"463035241142026251",
				"463035268514185226",
			},
		},
		CheatSh: CheatShConfig{
			BaseURL:   "https://cheat.sh",
			Language:  "python",
			Timeout:   15 * time.Second,
			UserAgent: "cheatbot/1.0",
			Heading:   "Result Of cht.sh",
		},
		Discord: DiscordConfig{
			Enabled: true,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// Load reads a YAML config file, applies env var overrides, and decrypts secrets.
// A missing file yields the defaults plus env overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return finish(cfg)
		}
		return nil, domain.NewDomainError("config.Load", domain.ErrConfigLoad, err.Error())
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	if err := validatePermissions(absPath); err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, domain.NewDomainError("config.Load", domain.ErrConfigLoad, "parse: "+err.Error())
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	ApplyEnvOverrides(cfg)

	if passphrase := os.Getenv("CHEATBOT_CONFIG_KEY"); passphrase != "" {
		if err := decryptSecrets(cfg, passphrase); err != nil {
			return nil, domain.WrapOp("config.decryptSecrets", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides maps CHEATBOT_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHEATBOT_PREFIX"); v != "" {
		cfg.Bot.Prefix = v
	}
	if v := os.Getenv("CHEATBOT_SUPPORT_CHANNEL_ID"); v != "" {
		cfg.Bot.SupportChannelID = v
	}
	if v := os.Getenv("CHEATBOT_ACCENT_COLOR"); v != "" {
		if n, err := strconv.ParseInt(v, 0, 32); err == nil && n >= 0 {
			cfg.Bot.AccentColor = int(n)
		}
	}
	if v := os.Getenv("CHEATBOT_COMMAND_COOLDOWN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.Command.Cooldown = d
		}
	}
	if v := os.Getenv("CHEATBOT_COMMAND_ALLOWED_ROLES"); v != "" {
		cfg.Command.AllowedRoles = splitAndTrim(v, ",")
	}
	if v := os.Getenv("CHEATBOT_COMMAND_ALLOWED_CATEGORIES"); v != "" {
		cfg.Command.AllowedCategories = splitAndTrim(v, ",")
	}
	if v := os.Getenv("CHEATBOT_COMMAND_WHITELISTED_CHANNELS"); v != "" {
		cfg.Command.WhitelistedChannels = splitAndTrim(v, ",")
	}
	if v := os.Getenv("CHEATBOT_CHEATSH_BASE_URL"); v != "" {
		cfg.CheatSh.BaseURL = v
	}
	if v := os.Getenv("CHEATBOT_CHEATSH_LANGUAGE"); v != "" {
		cfg.CheatSh.Language = v
	}
	if v := os.Getenv("CHEATBOT_CHEATSH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.CheatSh.Timeout = d
		}
	}
	if v := os.Getenv("CHEATBOT_DISCORD_ENABLED"); v != "" {
		cfg.Discord.Enabled = v == "true"
	}
	if v := os.Getenv("CHEATBOT_DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := os.Getenv("CHEATBOT_DISCORD_GUILD_ID"); v != "" {
		cfg.Discord.GuildID = v
	}
	if v := os.Getenv("CHEATBOT_SLACK_ENABLED"); v != "" {
		cfg.Slack.Enabled = v == "true"
	}
	if v := os.Getenv("CHEATBOT_SLACK_BOT_TOKEN"); v != "" {
		cfg.Slack.BotToken = v
	}
	if v := os.Getenv("CHEATBOT_SLACK_APP_TOKEN"); v != "" {
		cfg.Slack.AppToken = v
	}
	if v := os.Getenv("CHEATBOT_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("CHEATBOT_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("CHEATBOT_LOGGER_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("CHEATBOT_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("CHEATBOT_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
}

// splitAndTrim splits s by sep, trims whitespace and drops empty elements.
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validatePermissions checks the config file has restrictive permissions.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	// Allow 0600 and 0644 (readable by others but not writable)
	if mode&0o077 > 0o044 {
		return domain.NewDomainError("config.Load", domain.ErrPermissionDenied,
			fmt.Sprintf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode))
	}
	return nil
}
