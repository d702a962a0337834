package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"cheatbot/internal/domain"
	"cheatbot/internal/infra/config"
	"cheatbot/internal/infra/logger"
)

const previewWidth = 100

// runQuery performs one lookup outside of any chat surface and prints the
// reply the bot would have sent.
func runQuery(args []string) error {
	terms := queryTerms(args)
	if len(terms) == 0 {
		return fmt.Errorf("usage: cheatbot query TERMS...")
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser, err := logger.New(config.LoggerConfig{Level: "warn", Format: cfg.Logger.Format, Output: "stderr"})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.CheatSh.Timeout)
	defer cancel()

	msg, err := buildService(cfg, log).Lookup(ctx, terms)
	if err != nil {
		return err
	}
	return renderPreview(os.Stdout, msg, glamour.WithAutoStyle())
}

// queryTerms drops the --config flag and its value from args.
func queryTerms(args []string) []string {
	var terms []string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config":
			i++
		case strings.HasPrefix(args[i], "--config="):
		default:
			terms = append(terms, args[i])
		}
	}
	return terms
}

// renderPreview writes msg to w: a TextResult as rendered markdown, an
// ErrorNotice as a bordered panel in the notice color.
func renderPreview(w io.Writer, msg domain.FormattedMessage, style glamour.TermRendererOption) error {
	switch m := msg.(type) {
	case domain.TextResult:
		r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(previewWidth))
		if err != nil {
			return fmt.Errorf("markdown renderer: %w", err)
		}
		out, err := r.Render(previewMarkdown(m))
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	case domain.ErrorNotice:
		_, err := fmt.Fprintln(w, noticePanel(m))
		return err
	default:
		slog.Warn("unknown message type", "type", fmt.Sprintf("%T", msg))
		return nil
	}
}

// previewMarkdown lays a TextResult out as CommonMark. Chat clients accept a
// closing fence glued to the last line; terminal renderers do not.
func previewMarkdown(tr domain.TextResult) string {
	var b strings.Builder
	b.WriteString("**" + tr.Heading + "**\n\n")
	b.WriteString("```" + tr.Language + "\n" + tr.Body + "\n```\n\n")
	if tr.Truncated {
		b.WriteString("_" + domain.TruncationNotice + "_\n\n")
	}
	b.WriteString(tr.URL + "\n")
	return b.String()
}

func noticePanel(n domain.ErrorNotice) string {
	color := lipgloss.Color(n.ColorHex())
	title := lipgloss.NewStyle().Bold(true).Foreground(color).Render(n.Title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(previewWidth).
		Render(title + "\n" + strings.TrimSpace(n.Description))
}
