// Package remote is the HTTP client for the catalog's remote authority: cart
// mutations, feedback, replacement cards and the initial page.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/artpar/shelf/internal/core"
	"github.com/artpar/shelf/internal/logging"
)

const maxBodySize = 1 << 20

// BreakerSettings configures the optional circuit breaker.
type BreakerSettings struct {
	FailureRatio float64
	MinRequests  uint32
	OpenTimeout  time.Duration
}

// Client talks to the remote authority.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[reply]
	logger     *slog.Logger
}

type reply struct {
	status int
	body   []byte
}

// Option is a function that configures the Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBreaker puts a circuit breaker in front of every call. Transport
// failures and 5xx answers count as failures; rejections do not.
func WithBreaker(s BreakerSettings) Option {
	return func(c *Client) {
		c.breaker = gobreaker.NewCircuitBreaker[reply](gobreaker.Settings{
			Name:        "authority",
			MaxRequests: 1,
			Timeout:     s.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < s.MinRequests {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn("circuit breaker state change",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			},
		})
	}
}

// NewClient creates a client for the authority at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base url must start with http:// or https://, got %q", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the authority's base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// AddToCart asks the authority to put id in the cart.
func (c *Client) AddToCart(ctx context.Context, id core.ProductID) (CartResult, error) {
	return c.cart(ctx, PathAddToCart, id)
}

// RemoveFromCart asks the authority to take id out of the cart.
func (c *Client) RemoveFromCart(ctx context.Context, id core.ProductID) (CartResult, error) {
	return c.cart(ctx, PathRemoveFromCart, id)
}

func (c *Client) cart(ctx context.Context, path string, id core.ProductID) (CartResult, error) {
	var result CartResult
	if err := c.call(ctx, http.MethodPost, path, CartRequest{ProductID: id}, &result); err != nil {
		return CartResult{}, err
	}
	return result, nil
}

// SendFeedback records a like or dislike. The answer body is not inspected.
func (c *Client) SendFeedback(ctx context.Context, id core.ProductID, action core.FeedbackAction) error {
	_, err := c.do(ctx, http.MethodPost, PathFeedback, FeedbackRequest{ProductID: id, Action: action})
	return err
}

// FetchReplacement asks for a card whose product is not in exclude.
func (c *Client) FetchReplacement(ctx context.Context, exclude []core.ProductID) (ReplacementResult, error) {
	if exclude == nil {
		exclude = []core.ProductID{}
	}

	var result ReplacementResult
	if err := c.call(ctx, http.MethodPost, PathReplacement, ReplacementRequest{ExcludeIDs: exclude}, &result); err != nil {
		return ReplacementResult{}, err
	}
	return result, nil
}

// LoadPage fetches the rendered catalog page.
func (c *Client) LoadPage(ctx context.Context) (string, error) {
	r, err := c.do(ctx, http.MethodGet, PathDashboard, nil)
	if err != nil {
		return "", err
	}
	if r.status >= 300 {
		return "", &Error{Endpoint: PathDashboard, StatusCode: r.status, Err: ErrBadResponse}
	}
	return string(r.body), nil
}

// Cart fetches the current cart listing.
func (c *Client) Cart(ctx context.Context) (CartContents, error) {
	var result CartContents
	if err := c.call(ctx, http.MethodGet, PathCart, nil, &result); err != nil {
		return CartContents{}, err
	}
	return result, nil
}

// call performs a request and decodes the status envelope into out.
func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	r, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}

	var probe struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(r.body, &probe); err != nil || probe.Status == "" {
		return &Error{Endpoint: path, StatusCode: r.status, Err: ErrBadResponse}
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return &Error{Endpoint: path, StatusCode: r.status, Err: fmt.Errorf("%w: %v", ErrBadResponse, err)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (reply, error) {
	requestID := uuid.NewString()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return reply{}, &Error{Endpoint: path, RequestID: requestID, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return reply{}, &Error{Endpoint: path, RequestID: requestID, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, text/html")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	exec := func() (reply, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return reply{}, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return reply{}, fmt.Errorf("read response: %w", err)
		}
		r := reply{status: resp.StatusCode, body: data}
		if resp.StatusCode >= 500 {
			return r, fmt.Errorf("server error: %s", http.StatusText(resp.StatusCode))
		}
		return r, nil
	}

	var r reply
	if c.breaker != nil {
		r, err = c.breaker.Execute(exec)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = ErrCircuitOpen
		}
	} else {
		r, err = exec()
	}

	log := c.logger.With(
		slog.String("method", method),
		slog.String("endpoint", path),
		slog.String("request_id", requestID),
		slog.Duration("duration", time.Since(start)),
	)
	if err != nil {
		log.Warn("authority request failed", slog.Int("status", r.status), slog.String("error", err.Error()))
		return reply{}, &Error{Endpoint: path, StatusCode: r.status, RequestID: requestID, Err: err}
	}
	log.Debug("authority request completed", slog.Int("status", r.status))
	return r, nil
}
