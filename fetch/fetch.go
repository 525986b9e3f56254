// Package fetch implements the HTTP transport behind dictionary lookups.
//
// Unlike a synchronous fetcher, this transport is submit-and-forget: each
// Submit starts a goroutine that performs the GET and delivers exactly one
// completion to the caller's sink. Abort cancels the query's context; the
// cancelled query still delivers its (error) completion, which the owning
// request discards.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/hazyhaar/wikidict/idgen"
	"github.com/hazyhaar/wikidict/request"
	"github.com/hazyhaar/wikidict/safeurl"
)

// Config configures the transport.
type Config struct {
	// Timeout is the per-query HTTP timeout. Default: 30s.
	Timeout time.Duration
	// MaxBytes caps the response body size. Default: 1 MiB.
	MaxBytes int64
	// UserAgent sent with requests.
	UserAgent string
	// URLValidator validates URLs before each request.
	// Default: safeurl.Validate.
	URLValidator func(string) error
	// NewID generates query handles. Default: idgen.NanoID(12) with a
	// "q_" prefix.
	NewID idgen.Generator
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = safeurl.MaxResponseBody
	}
	if c.UserAgent == "" {
		c.UserAgent = "wikidict/1.0"
	}
	if c.URLValidator == nil {
		c.URLValidator = safeurl.Validate
	}
	if c.NewID == nil {
		c.NewID = idgen.Prefixed("q_", idgen.NanoID(12))
	}
}

// Client is the HTTP implementation of request.Transport.
type Client struct {
	client *http.Client
	config Config
	logger *slog.Logger

	mu       sync.Mutex
	inflight map[request.QueryID]context.CancelFunc
}

// New creates a Client.
func New(cfg Config, logger *slog.Logger) *Client {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		client:   &http.Client{Timeout: cfg.Timeout},
		config:   cfg,
		logger:   logger,
		inflight: make(map[request.QueryID]context.CancelFunc),
	}
}

// Submit issues an asynchronous GET for url and returns the query handle.
// Exactly one completion is delivered to sink.
func (c *Client) Submit(url string, sink chan<- request.Completion) request.QueryID {
	id := request.QueryID(c.config.NewID())
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.inflight[id] = cancel
	c.mu.Unlock()

	go func() {
		out := c.get(ctx, url)

		c.mu.Lock()
		delete(c.inflight, id)
		c.mu.Unlock()
		cancel()

		sink <- request.Completion{ID: id, Outcome: out}
	}()
	return id
}

// Abort cancels an in-flight query. Best effort: the completion (carrying
// the cancellation error) is still delivered.
func (c *Client) Abort(id request.QueryID) {
	c.mu.Lock()
	cancel, ok := c.inflight[id]
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

// InFlight returns the number of queries not yet completed.
func (c *Client) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}

func (c *Client) get(ctx context.Context, url string) request.Outcome {
	if err := c.config.URLValidator(url); err != nil {
		return request.Outcome{Err: fmt.Errorf("URL blocked: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return request.Outcome{Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return request.Outcome{Err: fmt.Errorf("http get: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return request.Outcome{Status: resp.StatusCode, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}

	body, err := safeurl.LimitedReadAll(resp.Body, c.config.MaxBytes)
	if err != nil {
		return request.Outcome{Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("fetch: completed", "url", url, "status", resp.StatusCode, "bytes", len(body))
	return request.Outcome{Body: body, Status: resp.StatusCode}
}
