package cheatsh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cheatbot/internal/domain"
)

// roundTripFunc adapts a function to the http.RoundTripper interface.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// errorReadCloser fails every Read.
type errorReadCloser struct{}

func (errorReadCloser) Read([]byte) (int, error) { return 0, fmt.Errorf("simulated body read error") }
func (errorReadCloser) Close() error             { return nil }

// timeoutError satisfies net.Error with Timeout() == true.
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func newTestClient(rt roundTripFunc) *Client {
	return NewClient("https://cheat.sh", "python", time.Second, slog.Default(),
		WithHTTPClient(&http.Client{Transport: rt}))
}

func TestURL(t *testing.T) {
	c := NewClient("https://cheat.sh/", "/python/", 0, slog.Default())

	tests := []struct {
		terms []string
		want  string
	}{
		{[]string{"read", "json"}, "https://cheat.sh/python/read+json"},
		{[]string{"hello"}, "https://cheat.sh/python/hello"},
		{[]string{"a/b?c"}, "https://cheat.sh/python/a%2Fb%3Fc"},
		{[]string{"c++", "&"}, "https://cheat.sh/python/c%2B%2B+%26"},
		{nil, "https://cheat.sh/python/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.URL(tt.terms), "terms %q", tt.terms)
	}
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/python/read+json", r.URL.EscapedPath())
		assert.Equal(t, "text/plain", r.Header.Get("Accept"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		fmt.Fprint(w, "import json\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "python", time.Second, slog.Default(), WithUserAgent("test-agent"))
	body, err := c.Fetch(context.Background(), c.URL([]string{"read", "json"}))
	require.NoError(t, err)
	assert.Equal(t, "import json\n", body)
}

func TestFetchNotFoundPassesBodyThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "#  404 NOT FOUND\n\nUnknown cheat sheet")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "python", time.Second, slog.Default())
	body, err := c.Fetch(context.Background(), c.URL([]string{"zzz"}))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body, "#  404 NOT FOUND"))
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "python", time.Second, slog.Default())
	_, err := c.Fetch(context.Background(), c.URL([]string{"x"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestFetchTransportError(t *testing.T) {
	c := newTestClient(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	_, err := c.Fetch(context.Background(), c.URL([]string{"x"}))
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.NotErrorIs(t, err, domain.ErrTimeout)
}

func TestFetchNetTimeout(t *testing.T) {
	c := newTestClient(func(*http.Request) (*http.Response, error) {
		return nil, timeoutError{}
	})
	_, err := c.Fetch(context.Background(), c.URL([]string{"x"}))
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, domain.CodeTimeout, domain.ErrorCodeOf(err))
}

func TestFetchContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "python", time.Minute, slog.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Fetch(ctx, c.URL([]string{"x"}))
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestFetchBodyReadError(t *testing.T) {
	c := newTestClient(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: errorReadCloser{}, Header: http.Header{}}, nil
	})
	_, err := c.Fetch(context.Background(), c.URL([]string{"x"}))
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "read response")
}

func TestFetchBodyLimit(t *testing.T) {
	big := strings.Repeat("a", maxBodySize+100)
	c := newTestClient(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(big)), Header: http.Header{}}, nil
	})
	body, err := c.Fetch(context.Background(), c.URL([]string{"x"}))
	require.NoError(t, err)
	assert.Len(t, body, maxBodySize)
}

func TestFetchInvalidURL(t *testing.T) {
	c := NewClient("https://cheat.sh", "python", time.Second, slog.Default())
	_, err := c.Fetch(context.Background(), "://bad")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWithUserAgentEmptyKeepsDefault(t *testing.T) {
	c := NewClient("https://cheat.sh", "python", 0, slog.Default(), WithUserAgent(""))
	assert.Equal(t, defaultUserAgent, c.userAgent)
	assert.Equal(t, defaultTimeout, c.client.Timeout)
}
