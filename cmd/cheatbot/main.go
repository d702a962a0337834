package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"cheatbot/internal/adapter/channel"
	"cheatbot/internal/adapter/cheatsh"
	"cheatbot/internal/domain"
	"cheatbot/internal/infra/config"
	"cheatbot/internal/infra/logger"
	"cheatbot/internal/infra/tracer"
	"cheatbot/internal/usecase/cheatsheet"
	"cheatbot/internal/usecase/command"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "-") {
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		return
	}

	switch os.Args[1] {
	case "query":
		if err := runQuery(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "query: %v\n", err)
			os.Exit(1)
		}
	case "encrypt":
		if err := runEncrypt(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "encrypt: %v\n", err)
			os.Exit(1)
		}
	case "doctor":
		if err := runDoctor(); err != nil {
			fmt.Fprintf(os.Stderr, "doctor: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'cheatbot --help' for usage information.\n", os.Args[1])
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`cheatbot - cheat.sh lookups for chat

USAGE:
    cheatbot [COMMAND] [FLAGS]

COMMANDS:
    query TERMS...   Run one lookup and print the reply to the terminal
    encrypt VALUE    Encrypt a secret for config.yaml (needs CHEATBOT_CONFIG_KEY)
    doctor           Run health checks on your setup

    (no command) - Run the bot

FLAGS:
    -h, --help         Show this help message
    --config PATH      Specify config file path (default: ./config.yaml)

CONFIGURATION:
    Config file: ./config.yaml (optional)
    Environment: CHEATBOT_* variables override config

EXAMPLES:
    cheatbot                          # Run with config.yaml
    cheatbot query read json          # Preview a lookup
    CHEATBOT_CONFIG_KEY=... cheatbot encrypt "$DISCORD_TOKEN"`)
}

func run() error {
	// 1. Config
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := config.ValidateSurfaces(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	// 3. Lookup service and command router
	router, err := buildRouter(cfg, buildService(cfg, log), log)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	// 4. Channels
	channels, err := buildChannels(cfg, log)
	if err != nil {
		return fmt.Errorf("channels: %w", err)
	}

	// 5. Graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go router.Run(ctx)

	log.Info("cheatbot starting",
		"prefix", cfg.Bot.Prefix,
		"command", cfg.Command.Name,
		"cheatsh", cfg.CheatSh.BaseURL+"/"+cfg.CheatSh.Language,
		"channels", len(channels),
	)

	var wg sync.WaitGroup
	errCh := make(chan error, len(channels))
	for _, ch := range channels {
		if err := ch.Start(ctx, handler(router, ch.Send, log)); err != nil {
			errCh <- fmt.Errorf("channel %s: %w", ch.Name(), err)
			cancel()
			break
		}
		wg.Add(1)
		go func(c domain.Channel) {
			defer wg.Done()
			<-ctx.Done()
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			if err := c.Stop(stopCtx); err != nil {
				log.Error("channel stop error", "channel", c.Name(), "error", err)
			}
		}(ch)
	}

	<-ctx.Done()
	wg.Wait()
	log.Info("cheatbot stopped")

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// buildService wires the cheat.sh client and the formatter into a lookup service.
func buildService(cfg *config.Config, log *slog.Logger) *cheatsheet.Service {
	client := cheatsh.NewClient(cfg.CheatSh.BaseURL, cfg.CheatSh.Language, cfg.CheatSh.Timeout, log,
		cheatsh.WithUserAgent(cfg.CheatSh.UserAgent))
	formatter := cheatsheet.NewFormatter(cheatsheet.FormatterConfig{
		Prefix:           cfg.Bot.Prefix,
		SupportChannelID: cfg.Bot.SupportChannelID,
		ErrorReplies:     cfg.Bot.ErrorReplies,
		Color:            cfg.Bot.AccentColor,
		Heading:          cfg.CheatSh.Heading,
		Language:         cfg.CheatSh.Language,
	})
	return cheatsheet.NewService(client, formatter, log)
}

func buildRouter(cfg *config.Config, svc *cheatsheet.Service, log *slog.Logger) (*command.Router, error) {
	router := command.NewRouter(cfg.Bot.Prefix, log)
	err := router.Register(command.Command{
		Name:     cfg.Command.Name,
		Aliases:  cfg.Command.Aliases,
		Cooldown: cfg.Command.Cooldown,
		Access: command.Access{
			Roles:      cfg.Command.AllowedRoles,
			Categories: cfg.Command.AllowedCategories,
			Channels:   cfg.Command.WhitelistedChannels,
		},
		Handler: svc.Handle,
	})
	if err != nil {
		return nil, err
	}
	return router, nil
}

func buildChannels(cfg *config.Config, log *slog.Logger) ([]domain.Channel, error) {
	var channels []domain.Channel
	if cfg.Discord.Enabled {
		var opts []channel.DiscordOption
		if cfg.Discord.GuildID != "" {
			opts = append(opts, channel.WithDiscordGuild(cfg.Discord.GuildID))
		}
		channels = append(channels, channel.NewDiscordChannel(cfg.Discord.Token, log, opts...))
	}
	if cfg.Slack.Enabled {
		ch, err := buildSlackChannel(cfg.Slack, log)
		if err != nil {
			return nil, fmt.Errorf("slack: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

// handler adapts the router to a channel: replies go back through sendFn and
// a failed lookup is reported to the user as a short notice.
func handler(router *command.Router, sendFn func(context.Context, domain.OutboundMessage) error, log *slog.Logger) domain.MessageHandler {
	return func(ctx context.Context, msg domain.InboundMessage) error {
		out, err := router.Handle(ctx, msg)
		if err != nil {
			log.Error("command failed", append(logger.ErrorAttrs(err), "channel", msg.ChannelName, "channel_id", msg.SessionID)...)
			return sendFn(ctx, domain.OutboundMessage{
				SessionID: msg.SessionID,
				Content:   failureNotice(err),
				IsError:   true,
				ReplyToID: msg.MessageID,
			})
		}
		if out.Empty() {
			return nil
		}
		return sendFn(ctx, out)
	}
}

func failureNotice(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "The lookup was cancelled."
	case domain.ErrorCodeOf(err) == domain.CodeTimeout:
		return "cheat.sh took too long to answer. Please try again later."
	default:
		return "Could not reach cheat.sh. Please try again later."
	}
}

func configPath() string {
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv("CHEATBOT_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}
