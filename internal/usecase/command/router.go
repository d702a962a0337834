package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"cheatbot/internal/domain"
	"cheatbot/internal/infra/logger"
	"cheatbot/internal/infra/tracer"
)

// Handler answers one invocation.
type Handler func(ctx context.Context, inv domain.Invocation) (domain.FormattedMessage, error)

// Command is a named, gated handler.
type Command struct {
	Name     string
	Aliases  []string
	Cooldown time.Duration // per user; zero disables
	Access   Access
	Handler  Handler
}

type registered struct {
	cmd      Command
	cooldown *Cooldown
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithClock replaces the clock used for cooldowns and invocation IDs.
func WithClock(now func() time.Time) RouterOption {
	return func(r *Router) { r.now = now }
}

// WithSweepInterval sets how often Run forgets idle cooldown buckets.
func WithSweepInterval(d time.Duration) RouterOption {
	return func(r *Router) {
		if d > 0 {
			r.sweepEvery = d
		}
	}
}

// Router parses prefixed chat messages and dispatches them to commands.
// It is safe for concurrent use once registration is done.
type Router struct {
	prefix     string
	logger     *slog.Logger
	now        func() time.Time
	sweepEvery time.Duration

	mu       sync.RWMutex
	commands map[string]*registered // keyed by name and every alias
	ordered  []*registered
}

// NewRouter creates a Router for messages starting with prefix.
func NewRouter(prefix string, logger *slog.Logger, opts ...RouterOption) *Router {
	r := &Router{
		prefix:     prefix,
		logger:     logger,
		now:        time.Now,
		sweepEvery: time.Minute,
		commands:   make(map[string]*registered),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register adds cmd. Names and aliases are case-sensitive and must be unique
// across all registered commands.
func (r *Router) Register(cmd Command) error {
	if cmd.Name == "" || cmd.Handler == nil {
		return domain.NewDomainError("command.Register", domain.ErrInvalidInput, "name and handler are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{cmd.Name}, cmd.Aliases...)
	for _, n := range names {
		if _, exists := r.commands[n]; exists {
			return domain.NewDomainError("command.Register", domain.ErrDuplicateCommand, n)
		}
	}

	reg := &registered{cmd: cmd, cooldown: NewCooldown(cmd.Cooldown)}
	for _, n := range names {
		r.commands[n] = reg
	}
	r.ordered = append(r.ordered, reg)
	return nil
}

// Parse recognizes an invocation in msg. The second result is false when the
// message is not addressed to a registered command.
func (r *Router) Parse(msg domain.InboundMessage) (domain.Invocation, bool) {
	rest, ok := strings.CutPrefix(msg.Content, r.prefix)
	if !ok {
		return domain.Invocation{}, false
	}
	fields := strings.Fields(rest)
	// "prefix" followed by whitespace is not a command.
	if len(fields) == 0 || !strings.HasPrefix(rest, fields[0]) {
		return domain.Invocation{}, false
	}

	r.mu.RLock()
	reg, ok := r.commands[fields[0]]
	r.mu.RUnlock()
	if !ok {
		return domain.Invocation{}, false
	}

	return domain.Invocation{
		ID:      newInvocationID(r.now()),
		Command: reg.cmd.Name,
		Alias:   fields[0],
		Args:    fields[1:],
		Message: msg,
	}, true
}

// Handle processes one inbound message. Messages that are not commands, or
// that fail the access policy, produce an empty reply and no error. A user on
// cooldown gets a short notice. Handler failures are returned to the caller.
func (r *Router) Handle(ctx context.Context, msg domain.InboundMessage) (domain.OutboundMessage, error) {
	inv, ok := r.Parse(msg)
	if !ok {
		return domain.OutboundMessage{}, nil
	}

	ctx, span := tracer.StartSpan(ctx, "command.dispatch")
	defer span.End()
	span.SetAttributes(
		tracer.StringAttr("command.name", inv.Command),
		tracer.StringAttr("command.invocation_id", inv.ID),
		tracer.StringAttr("channel.name", msg.ChannelName),
	)

	log := logger.ForInvocation(r.logger, inv)

	r.mu.RLock()
	reg := r.commands[inv.Alias]
	r.mu.RUnlock()

	if err := reg.cmd.Access.Check(msg); err != nil {
		log.Debug("invocation denied", logger.ErrorAttrs(err)...)
		span.SetAttributes(tracer.BoolAttr("command.denied", true))
		return domain.OutboundMessage{}, nil
	}

	if err := reg.cooldown.Allow(msg.SenderID, r.now()); err != nil {
		var ce *CooldownError
		if !errors.As(err, &ce) {
			return domain.OutboundMessage{}, err
		}
		log.Debug("invocation on cooldown", "retry_after", ce.RetryAfter)
		span.SetAttributes(tracer.BoolAttr("command.cooldown", true))
		return domain.OutboundMessage{
			SessionID: msg.SessionID,
			Content:   cooldownNotice(ce.RetryAfter),
			ReplyToID: msg.MessageID,
		}, nil
	}

	log.Debug("dispatching invocation", "alias", inv.Alias, "args", len(inv.Args))
	start := r.now()

	reply, err := reg.cmd.Handler(ctx, inv)
	if err != nil {
		tracer.RecordError(span, err)
		return domain.OutboundMessage{}, fmt.Errorf("command %s: %w", inv.Command, err)
	}

	log.Debug("invocation completed", "duration", r.now().Sub(start))
	tracer.SetOK(span)
	return domain.OutboundMessage{
		SessionID: msg.SessionID,
		Message:   reply,
		ReplyToID: msg.MessageID,
	}, nil
}

// Run forgets idle cooldown buckets until ctx is done.
func (r *Router) Run(ctx context.Context) {
	runSweeper(ctx, r.sweepEvery, r.sweep)
}

func (r *Router) sweep() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	for _, reg := range r.ordered {
		if n := reg.cooldown.Sweep(now); n > 0 {
			r.logger.Debug("cooldown buckets swept", "command", reg.cmd.Name, "removed", n)
		}
	}
}

func cooldownNotice(retryAfter time.Duration) string {
	secs := int((retryAfter + time.Second - 1) / time.Second)
	return fmt.Sprintf("This command is on cooldown. Try again in %ds.", secs)
}

func newInvocationID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
