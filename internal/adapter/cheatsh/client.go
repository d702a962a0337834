package cheatsh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cheatbot/internal/domain"
	"cheatbot/internal/infra/tracer"
)

const (
	maxBodySize      = 512 * 1024 // 512KB
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "cheatbot/1.0"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithUserAgent sets the User-Agent header sent upstream.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// Client queries a cheat.sh instance for one language.
type Client struct {
	client    *http.Client
	baseURL   string
	language  string
	userAgent string
	logger    *slog.Logger
}

// NewClient creates a cheat.sh client. A zero timeout uses the default.
func NewClient(baseURL, language string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		client:    &http.Client{Timeout: timeout},
		baseURL:   strings.TrimRight(baseURL, "/"),
		language:  strings.Trim(language, "/"),
		userAgent: defaultUserAgent,
		logger:    logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// URL joins terms with spaces and form-encodes them into the search URL.
func (c *Client) URL(terms []string) string {
	return c.baseURL + "/" + c.language + "/" + url.QueryEscape(strings.Join(terms, " "))
}

// Fetch performs a single GET and returns the body as text. A 404 status is
// not an error: cheat.sh signals a missing sheet in the body, and the caller
// decides from the text.
func (c *Client) Fetch(ctx context.Context, searchURL string) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "cheatsh.fetch")
	defer span.End()
	span.SetAttributes(tracer.StringAttr("cheatsh.url", searchURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		tracer.RecordError(span, err)
		return "", domain.NewDomainError("cheatsh.Fetch", domain.ErrInvalidInput, err.Error())
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		tracer.RecordError(span, err)
		return "", transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		tracer.RecordError(span, err)
		return "", transportError(fmt.Errorf("read response: %w", err))
	}

	span.SetAttributes(tracer.IntAttr("http.status_code", resp.StatusCode))
	if !ok(resp.StatusCode) {
		err := domain.NewDomainError("cheatsh.Fetch", domain.ErrUpstream, fmt.Sprintf("HTTP %d", resp.StatusCode))
		tracer.RecordError(span, err)
		return "", err
	}

	c.logger.Debug("cheat.sh fetch completed",
		"url", searchURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)
	tracer.SetOK(span)
	return string(body), nil
}

func ok(status int) bool {
	return (status >= 200 && status < 300) || status == http.StatusNotFound
}

func transportError(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return domain.NewDomainError("cheatsh.Fetch", domain.ErrTimeout, err.Error())
	}
	return domain.NewDomainError("cheatsh.Fetch", domain.ErrUpstream, err.Error())
}
