package cheatsheet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cheatbot/internal/domain"
	"cheatbot/internal/infra/logger"
	"cheatbot/internal/infra/tracer"
)

// Dispatcher builds search URLs and fetches raw cheat sheet text.
type Dispatcher interface {
	URL(terms []string) string
	Fetch(ctx context.Context, searchURL string) (string, error)
}

// Service answers cheat sheet lookups.
type Service struct {
	dispatcher Dispatcher
	formatter  *Formatter
	logger     *slog.Logger
}

// NewService creates a Service.
func NewService(dispatcher Dispatcher, formatter *Formatter, logger *slog.Logger) *Service {
	return &Service{dispatcher: dispatcher, formatter: formatter, logger: logger}
}

// Lookup queries cheat.sh for terms and formats the answer. An unknown sheet
// is not an error: it yields an ErrorNotice.
func (s *Service) Lookup(ctx context.Context, terms []string) (domain.FormattedMessage, error) {
	ctx, span := tracer.StartSpan(ctx, "cheatsheet.lookup")
	defer span.End()

	searchURL := s.dispatcher.URL(terms)
	span.SetAttributes(tracer.StringAttr("cheatsheet.query", strings.Join(terms, " ")))

	raw, err := s.dispatcher.Fetch(ctx, searchURL)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("lookup %q: %w", strings.Join(terms, " "), err)
	}

	msg := s.formatter.Format(searchURL, Sanitize(raw))
	if tr, ok := msg.(domain.TextResult); ok {
		span.SetAttributes(tracer.BoolAttr("cheatsheet.truncated", tr.Truncated))
	} else {
		span.SetAttributes(tracer.BoolAttr("cheatsheet.not_found", true))
	}
	tracer.SetOK(span)
	return msg, nil
}

// Handle is the command handler for a cheat sheet invocation.
func (s *Service) Handle(ctx context.Context, inv domain.Invocation) (domain.FormattedMessage, error) {
	log := logger.ForInvocation(s.logger, inv)

	msg, err := s.Lookup(ctx, inv.Args)
	if err != nil {
		log.Warn("cheat sheet lookup failed", logger.ErrorAttrs(err)...)
		return nil, err
	}

	switch m := msg.(type) {
	case domain.ErrorNotice:
		log.Info("cheat sheet not found", "query", strings.Join(inv.Args, " "))
	case domain.TextResult:
		log.Info("cheat sheet found", "url", m.URL, "truncated", m.Truncated)
	}
	return msg, nil
}
