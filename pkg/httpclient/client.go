// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package httpclient is the retrying HTTP client shared by the Anthropic
// and OpenAI-compatible LLM clients (pkg/llm): 429/503 are retried with a
// delay taken from the provider's rate-limit headers or, failing that,
// exponential backoff; 408/500/502/504 are retried at most twice with
// short fixed delays; other non-2xx responses are returned without an
// error. Optional custom-CA TLS serves self-hosted LLM gateways.
package httpclient

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"os"
	"time"
)

// retryClass buckets a response status code into how it should be retried.
type retryClass int

const (
	noRetry retryClass = iota
	// fixedRetry retries a handful of times with short fixed delays; used
	// for transient server errors where there's no rate-limit signal to
	// size the delay from.
	fixedRetry
	// rateLimitRetry sizes its delay from the provider's rate-limit
	// headers when present, falling back to exponential backoff.
	rateLimitRetry
)

func classify(statusCode int) retryClass {
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return rateLimitRetry
	case http.StatusRequestTimeout, http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return fixedRetry
	default:
		return noRetry
	}
}

// RateLimitInfo is what a provider's response headers reveal about its
// rate limit state, as parsed by a HeaderParser.
type RateLimitInfo struct {
	RetryAfter        time.Duration
	ResetUnix         int64
	RequestsRemaining int
	TokensRemaining   int
}

// HeaderParser extracts RateLimitInfo from a provider's response headers.
type HeaderParser func(http.Header) RateLimitInfo

// Client wraps http.Client with retry/backoff and provider rate-limit
// awareness.
type Client struct {
	inner        *http.Client
	maxRetries   int
	baseDelay    time.Duration
	maxDelay     time.Duration
	headerParser HeaderParser
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client (transport, timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.inner = c }
}

// WithMaxRetries sets how many retry attempts follow the initial request.
func WithMaxRetries(n int) Option {
	return func(cl *Client) { cl.maxRetries = n }
}

// WithHeaderParser sets the provider-specific rate-limit header parser.
func WithHeaderParser(p HeaderParser) Option {
	return func(cl *Client) { cl.headerParser = p }
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// WithTLSConfig layers a custom *tls.Config onto the client's transport,
// for self-hosted LLM gateways behind a corporate CA or (dev-only) a
// self-signed certificate. Must be applied after WithHTTPClient if both
// are given, since it mutates the transport already on cl.inner.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(cl *Client) {
		if cfg == nil {
			return
		}
		transport, ok := cl.inner.Transport.(*http.Transport)
		if !ok || transport == nil {
			transport = &http.Transport{}
		} else {
			transport = transport.Clone()
		}
		transport.TLSClientConfig = cfg
		cl.inner.Transport = transport
	}
}

// BuildTLSConfig constructs a *tls.Config from a custom CA certificate
// file and/or InsecureSkipVerify, for use with WithTLSConfig. caCertPath
// may be empty.
func BuildTLSConfig(caCertPath string, insecureSkipVerify bool) (*tls.Config, error) {
	cfg := &tls.Config{}

	if caCertPath != "" {
		pem, err := os.ReadFile(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("reading CA certificate %s: %w", caCertPath, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("parsing CA certificate %s", caCertPath)
		}
		cfg.RootCAs = pool
	}

	if insecureSkipVerify {
		cfg.InsecureSkipVerify = true
	}

	return cfg, nil
}

// New creates a Client with sane LLM-API defaults: 5 retries, 2s base
// delay, 60s cap, no header parser (set one via WithHeaderParser).
func New(opts ...Option) *Client {
	c := &Client{
		inner:      &http.Client{Timeout: 120 * time.Second},
		maxRetries: 5,
		baseDelay:  2 * time.Second,
		maxDelay:   60 * time.Second,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes req, retrying on transient failures per classify(status).
// The request body is buffered up front so it can be replayed across
// attempts.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("buffering request body for retry: %w", err)
		}
		req.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(body)), nil }
	}

	var lastResp *http.Response
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 && body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		resp, class, info, err := c.attempt(req)
		if class == noRetry {
			return resp, err
		}
		lastResp = resp

		if attempt >= c.maxRetries {
			return resp, &RetryableError{StatusCode: statusOf(resp), Attempts: attempt + 1, Err: err}
		}

		delay := c.delayFor(class, attempt, info)
		if delay <= 0 {
			return resp, err
		}
		c.logRetry(class, attempt, delay, resp)
		time.Sleep(delay)
	}

	return lastResp, &RetryableError{StatusCode: statusOf(lastResp), Attempts: c.maxRetries + 1, Err: fmt.Errorf("retries exhausted")}
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

func (c *Client) attempt(req *http.Request) (*http.Response, retryClass, RateLimitInfo, error) {
	resp, err := c.inner.Do(req)
	if err != nil {
		return nil, noRetry, RateLimitInfo{}, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, noRetry, RateLimitInfo{}, nil
	}

	class := classify(resp.StatusCode)
	if class == noRetry {
		return resp, noRetry, RateLimitInfo{}, nil
	}

	var info RateLimitInfo
	if c.headerParser != nil {
		info = c.headerParser(resp.Header)
	}
	return resp, class, info, fmt.Errorf("http %d", resp.StatusCode)
}

func (c *Client) delayFor(class retryClass, attempt int, info RateLimitInfo) time.Duration {
	switch class {
	case rateLimitRetry:
		if info.RetryAfter > 0 {
			return info.RetryAfter
		}
		if info.ResetUnix > 0 {
			if d := time.Until(time.Unix(info.ResetUnix, 0)); d > 0 {
				return min(d, c.maxDelay)
			}
		}
		backoff := time.Duration(math.Pow(2, float64(attempt))) * c.baseDelay
		jitter := time.Duration(rand.Float64() * float64(backoff) * 0.1)
		return min(backoff+jitter, c.maxDelay)
	case fixedRetry:
		if attempt >= 2 {
			return 0
		}
		return time.Duration(2+attempt) * time.Second
	default:
		return 0
	}
}

func (c *Client) logRetry(class retryClass, attempt int, delay time.Duration, resp *http.Response) {
	switch class {
	case rateLimitRetry:
		c.logger.Info("llm rate limited, retrying", "status", statusOf(resp), "attempt", attempt+1, "delay", delay)
	case fixedRetry:
		c.logger.Warn("llm server error, retrying", "status", statusOf(resp), "attempt", attempt+1, "delay", delay)
	}
}

// RetryableError is returned when a request exhausted its retry budget.
type RetryableError struct {
	StatusCode int
	Attempts   int
	Err        error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("http %d: exhausted %d attempt(s): %v", e.StatusCode, e.Attempts, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }
