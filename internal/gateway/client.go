// Package gateway is the typed REST client for the storefront API. It is
// pure transport: every call builds a request, classifies the outcome as a
// network or remote failure, and decodes the server's representation.
// No state beyond the session's bearer token lives here.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	breaker *gobreaker.CircuitBreaker[[]byte]

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithBreakerSettings tunes when the breaker opens and for how long.
func WithBreakerSettings(failureThreshold uint32, openTimeout time.Duration) Option {
	return func(c *Client) {
		c.breaker = newBreaker(c.log, failureThreshold, openTimeout)
	}
}

func NewClient(baseURL string, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		log:     log,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	c.breaker = newBreaker(log, 5, 30*time.Second)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newBreaker builds a breaker that trips only on connectivity failures.
// Remote domain errors (4xx/5xx answers from a reachable server) count
// as successes for the breaker's purposes.
func newBreaker(log *zap.Logger, failureThreshold uint32, openTimeout time.Duration) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "storefront-api",
		Timeout: openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsNetwork(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// SetToken installs the bearer token returned by login.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken drops the bearer token on logout.
func (c *Client) ClearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do performs one API call. body is JSON-encoded when non-nil; the
// response is decoded into out when out is non-nil. All failures come
// back as *Error with the kind tag set.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Kind: KindRemote, Err: fmt.Errorf("encode request: %w", err)}
		}
		reqBody = bytes.NewReader(buf)
	}

	payload, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, op, method, path, reqBody)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &Error{Op: op, Kind: KindNetwork, Err: err}
		}
		return err
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return &Error{Op: op, Kind: KindRemote, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindRemote, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindNetwork, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := statusKind(resp.StatusCode)
		cause := serverMessage(payload)
		if resp.StatusCode == http.StatusNotFound {
			cause = ErrNotFound
		}
		c.log.Debug("api call failed",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("kind", kind.String()))
		return nil, &Error{Op: op, Kind: kind, Status: resp.StatusCode, Err: cause}
	}
	return payload, nil
}

// serverMessage extracts the server's error string from an error payload.
func serverMessage(payload []byte) error {
	var er struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(payload, &er) == nil && er.Error != "" {
		return errors.New(er.Error)
	}
	return errors.New("request failed")
}
