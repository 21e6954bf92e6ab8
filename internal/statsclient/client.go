// Package statsclient talks to the move statistics HTTP API.
package statsclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/verte-zerg/chessex/internal/model"
)

var (
	// ErrNotFound is returned when the API has no record for the lookup.
	ErrNotFound = errors.New("not found")
	// ErrInvalidResponse is returned when the body cannot be decoded.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrUnavailable is returned for server-side (5xx) failures.
	ErrUnavailable = errors.New("stats api unavailable")
)

// DefaultTimeout bounds a single request when the caller sets no deadline.
const DefaultTimeout = 10 * time.Second

// Client is a fasthttp-backed statistics API client. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxConnsPerHost caps concurrent connections to the API host.
func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			ReadTimeout:     DefaultTimeout,
			WriteTimeout:    DefaultTimeout,
			MaxConnsPerHost: 16,
			// Encoded FEN segments must reach the server with %2F intact.
			DisablePathNormalizing: true,
		},
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EncodeFEN returns the path segment used for FEN lookups.
func EncodeFEN(fen string) string {
	return url.PathEscape(base64.StdEncoding.EncodeToString([]byte(fen)))
}

// MovesByFEN fetches candidate moves for a FEN at the given rating bucket.
func (c *Client) MovesByFEN(ctx context.Context, fen, rating string) ([]model.MoveStat, error) {
	body, err := c.get(ctx, "/fen/"+EncodeFEN(fen)+"/"+url.PathEscape(rating)+"/moves")
	if err != nil {
		return nil, err
	}
	return DecodeMoves(body)
}

// PositionByFEN fetches the aggregate record for a FEN at the given rating bucket.
func (c *Client) PositionByFEN(ctx context.Context, fen, rating string) (model.Position, error) {
	body, err := c.get(ctx, "/fen/"+EncodeFEN(fen)+"/"+url.PathEscape(rating)+"/position")
	if err != nil {
		return model.Position{}, err
	}
	pos, err := DecodePosition(body)
	if err != nil {
		return model.Position{}, err
	}
	pos.FEN = fen
	return pos, nil
}

// MovesByPosition fetches candidate moves for a resolved position ID.
func (c *Client) MovesByPosition(ctx context.Context, positionID string) ([]model.MoveStat, error) {
	body, err := c.get(ctx, "/position/"+url.PathEscape(positionID)+"/moves")
	if err != nil {
		return nil, err
	}
	return DecodeMoves(body)
}

// Position fetches the aggregate record for a resolved position ID.
func (c *Client) Position(ctx context.Context, positionID string) (model.Position, error) {
	body, err := c.get(ctx, "/position/"+url.PathEscape(positionID))
	if err != nil {
		return model.Position{}, err
	}
	return DecodePosition(body)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.URI().DisablePathNormalizing = true
	req.SetRequestURI(c.baseURL + path)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", path, err)
	}
	status := resp.StatusCode()
	c.logger.Debug("stats api request",
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(started)),
	)
	switch {
	case status >= 500:
		return nil, fmt.Errorf("%s: status %d: %w", path, status, ErrUnavailable)
	case status < 200 || status >= 300:
		return nil, fmt.Errorf("%s: status %d: %w", path, status, ErrNotFound)
	}
	// The body buffer is released with the response.
	return bytes.Clone(resp.Body()), nil
}

func (c *Client) deadline(ctx context.Context) time.Time {
	limit := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(limit) {
		return dl
	}
	return limit
}
