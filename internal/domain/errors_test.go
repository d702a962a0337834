package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorFormat(t *testing.T) {
	err := NewDomainError("cheatsh.Fetch", ErrUpstream, "HTTP 502")
	want := "cheatsh.Fetch: HTTP 502: upstream request failed"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorFormatNoDetail(t *testing.T) {
	err := NewDomainError("Router.Dispatch", ErrRateLimit, "")
	want := "Router.Dispatch: rate limit exceeded"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	err := NewDomainError("cheatsh.Fetch", ErrTimeout, "15s")
	if !errors.Is(err, ErrTimeout) {
		t.Error("errors.Is should match ErrTimeout")
	}
}

func TestDomainErrorAs(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", NewDomainError("cheatsh.Fetch", ErrUpstream, "refused"))
	var de *DomainError
	require.True(t, errors.As(wrapped, &de))
	assert.Equal(t, "cheatsh.Fetch", de.Op)
}

func TestErrorCodeOf_DirectSentinel(t *testing.T) {
	assert.Equal(t, CodeUpstream, ErrorCodeOf(ErrUpstream))
	assert.Equal(t, CodeRateLimit, ErrorCodeOf(ErrRateLimit))
	assert.Equal(t, CodeConfigLoad, ErrorCodeOf(ErrConfigLoad))
}

func TestErrorCodeOf_DomainError(t *testing.T) {
	err := NewDomainError("Router.Register", ErrDuplicateCommand, "cht")
	assert.Equal(t, CodeDuplicateCommand, ErrorCodeOf(err))
}

func TestErrorCodeOf_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", ErrPermissionDenied)
	assert.Equal(t, CodePermissionDenied, ErrorCodeOf(wrapped))
}

func TestErrorCodeOf_TimeoutWins(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrUpstream, ErrTimeout)
	assert.Equal(t, CodeTimeout, ErrorCodeOf(err))
}

func TestErrorCodeOf_UnknownError(t *testing.T) {
	assert.Equal(t, CodeUnknown, ErrorCodeOf(fmt.Errorf("some random error")))
}

func TestErrorCodeOf_Nil(t *testing.T) {
	assert.Equal(t, CodeUnknown, ErrorCodeOf(nil))
}

func TestDomainError_Code(t *testing.T) {
	err := NewDomainError("cheatsh.Fetch", ErrUpstream, "HTTP 500")
	assert.Equal(t, CodeUpstream, err.Code())
}

func TestDomainError_CodeUnknownSentinel(t *testing.T) {
	err := NewDomainError("Op", fmt.Errorf("custom"), "detail")
	assert.Equal(t, CodeUnknown, err.Code())
}

func TestWrapOp(t *testing.T) {
	assert.NoError(t, WrapOp("op", nil))

	err := WrapOp("config.Load", ErrConfigLoad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigLoad))
	assert.Equal(t, "config.Load: failed to load configuration", err.Error())
}
