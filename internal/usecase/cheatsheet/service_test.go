package cheatsheet

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cheatbot/internal/domain"
)

type stubDispatcher struct {
	body    string
	err     error
	fetched []string
}

func (d *stubDispatcher) URL(terms []string) string {
	return "https://cheat.sh/python/" + strings.Join(terms, "+")
}

func (d *stubDispatcher) Fetch(_ context.Context, searchURL string) (string, error) {
	d.fetched = append(d.fetched, searchURL)
	return d.body, d.err
}

func newTestService(d Dispatcher) *Service {
	return NewService(d, newTestFormatter(), slog.Default())
}

func TestServiceLookupSanitizesBeforeFormatting(t *testing.T) {
	d := &stubDispatcher{body: "\x1b[32mprint(`x`)\x1b[0m"}
	s := newTestService(d)

	msg, err := s.Lookup(context.Background(), []string{"print"})
	require.NoError(t, err)

	tr, ok := msg.(domain.TextResult)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, "print(\\`x\\`)", tr.Body)
	assert.Equal(t, "https://cheat.sh/python/print", tr.URL)
	assert.Equal(t, []string{"https://cheat.sh/python/print"}, d.fetched)
}

func TestServiceLookupNotFound(t *testing.T) {
	d := &stubDispatcher{body: NotFoundMarker + "\n\nUnknown topic."}
	msg, err := newTestService(d).Lookup(context.Background(), []string{"zzz"})
	require.NoError(t, err)
	assert.IsType(t, domain.ErrorNotice{}, msg)
}

func TestServiceLookupColoredNotFound(t *testing.T) {
	// The marker only counts once the color codes are gone.
	d := &stubDispatcher{body: "\x1b[1m" + NotFoundMarker + "\x1b[0m"}
	msg, err := newTestService(d).Lookup(context.Background(), []string{"zzz"})
	require.NoError(t, err)
	assert.IsType(t, domain.ErrorNotice{}, msg)
}

func TestServiceLookupTransportFailure(t *testing.T) {
	upstream := domain.NewDomainError("cheatsh.Fetch", domain.ErrUpstream, "HTTP 502")
	d := &stubDispatcher{err: upstream}

	msg, err := newTestService(d).Lookup(context.Background(), []string{"read", "json"})
	assert.Nil(t, msg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	assert.Contains(t, err.Error(), `"read json"`)
}

func TestServiceHandleUsesInvocationArgs(t *testing.T) {
	d := &stubDispatcher{body: "ok"}
	inv := domain.Invocation{
		ID:      "01J0000000000000000000000",
		Command: "cheat",
		Args:    []string{"hello", "world"},
		Message: domain.InboundMessage{SessionID: "c1", SenderID: "u1"},
	}

	msg, err := newTestService(d).Handle(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, "ok", msg.(domain.TextResult).Body)
	assert.Equal(t, []string{"https://cheat.sh/python/hello+world"}, d.fetched)
}

func TestServiceHandlePropagatesError(t *testing.T) {
	d := &stubDispatcher{err: domain.ErrTimeout}
	_, err := newTestService(d).Handle(context.Background(), domain.Invocation{Args: []string{"x"}})
	assert.ErrorIs(t, err, domain.ErrTimeout)
}
