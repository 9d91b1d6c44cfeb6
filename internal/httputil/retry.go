// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the retrying HTTP GET used by the fetcher.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RetryBaseDelay is the default linear backoff base. Attempt n (1-based)
// that fails is followed by a wait of RetryBaseDelay*n. Tests override this
// to avoid real sleeps.
var RetryBaseDelay = 1500 * time.Millisecond

const defaultMaxAttempts = 4

// ErrUnexpectedStatus is wrapped by errors for responses other than 200 OK.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// FetchError reports a request that failed on every attempt.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("request failed after %d attempt(s): %s: %v", e.Attempts, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RetryPolicy bounds the attempts made for one request.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts (default 4).
	MaxAttempts int

	// BaseDelay is the linear backoff base (default RetryBaseDelay).
	BaseDelay time.Duration

	// OnFailure, if set, is called after every failed attempt. next is the
	// wait before the following attempt, or zero when no attempt follows.
	OnFailure func(attempt int, next time.Duration, err error)
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = RetryBaseDelay
	}
	return p
}

// Retry calls fn until it succeeds or the policy's attempts are used up,
// sleeping BaseDelay*attempt between attempts. It returns the last error
// from fn, or ctx.Err() if the context is cancelled during a wait.
func Retry(ctx context.Context, policy RetryPolicy, fn func(attempt int) error) (attempts int, err error) {
	policy = policy.withDefaults()

	for attempt := 1; ; attempt++ {
		err = fn(attempt)
		if err == nil {
			return attempt, nil
		}

		var next time.Duration
		if attempt < policy.MaxAttempts {
			next = policy.BaseDelay * time.Duration(attempt)
		}
		if policy.OnFailure != nil {
			policy.OnFailure(attempt, next, err)
		}
		if next == 0 {
			return attempt, err
		}

		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(next):
		}
	}
}

// GetJSON issues a GET for rawURL and decodes the JSON body into a T. The
// request and the decode together form one attempt; any failure, including a
// non-200 status or a malformed body, is retried under policy. When every
// attempt fails the returned error is a *FetchError carrying rawURL.
func GetJSON[T any](ctx context.Context, client *http.Client, rawURL, userAgent string, policy RetryPolicy) (T, error) {
	var out T
	attempts, err := Retry(ctx, policy, func(int) error {
		var v T
		if err := getOnce(ctx, client, rawURL, userAgent, &v); err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return out, err
		}
		return out, &FetchError{URL: rawURL, Attempts: attempts, Err: err}
	}
	return out, nil
}

func getOnce(ctx context.Context, client *http.Client, rawURL, userAgent string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: HTTP %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
