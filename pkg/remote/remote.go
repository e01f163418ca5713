// Copyright 2025 walteh LLC
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

package remote

import (
	"context"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrStatus is returned for any non-200 response; it is never retried
	ErrStatus = errors.Base("unexpected status code")
	// ErrTransient marks a request that kept failing with network errors
	ErrTransient = errors.Base("transient network error")
)

const defaultDialTimeout = 10 * time.Second

// 📥 Client downloads resources over HTTP with a retry policy
type Client struct {
	http   *http.Client
	policy RetryPolicy
	sleep  SleepFunc
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the whole-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithDialTimeout sets the connect timeout of the default transport
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) {
		if t, ok := c.http.Transport.(*http.Transport); ok {
			t.DialContext = (&net.Dialer{Timeout: d}).DialContext
		}
	}
}

// WithRetryPolicy replaces the retry policy
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

// WithSleep replaces the delay function used between attempts
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) { c.sleep = fn }
}

// 🏭 NewClient creates a client. Without options it makes a single attempt
// with no request timeout beyond the dial timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:       http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{Timeout: defaultDialTimeout}).DialContext,
			},
		},
		policy: SingleAttempt(),
		sleep:  sleepWithContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Policy() RetryPolicy {
	return c.policy
}

// 🌐 Get downloads url and returns the full body. Transient failures,
// including a body cut short mid-read, are retried per the policy.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	logger := zerolog.Ctx(ctx)
	attempts := c.policy.Attempts()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		if !IsTransient(err) {
			return nil, err
		}

		lastErr = err
		if attempt == attempts {
			break
		}

		delay := c.policy.Delay(attempt)
		logger.Warn().
			Err(err).
			Str("url", url).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Dur("delay", delay).
			Msg("attempt failed, retrying")

		if err := c.sleep(ctx, delay); err != nil {
			return nil, errors.Errorf("waiting to retry %s: %w", url, err)
		}
	}

	logger.Error().Str("url", url).Int("max_attempts", attempts).Msg("all attempts failed")
	return nil, errors.Errorf("%w: %s after %d attempts: %s", ErrTransient, url, attempts, lastErr.Error())
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Errorf("creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Errorf("reading body: %w", err)
	}
	return body, nil
}

// 🔍 IsTransient reports whether err is a network failure worth retrying:
// dropped or refused connections, truncated bodies and timeouts.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ErrStatus) {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	switch {
	case errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.EOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
