package bilibili

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"danmaku/internal/metrics"
	"danmaku/pkg/retry"
)

// Transport paces requests with a token bucket and retries replayable
// requests on network errors and on 412/429/5xx answers. The platform answers
// 412 when it decides a client is going too fast.
type Transport struct {
	Base     http.RoundTripper
	Limiter  *rate.Limiter
	RetryMax int
	Backoff  time.Duration
}

type statusError struct {
	StatusCode int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func classify(err error) retry.Action {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retry.Stop
	}
	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusTooManyRequests || se.StatusCode == http.StatusPreconditionFailed:
			return retry.After
		case se.StatusCode >= 500:
			return retry.Retry
		}
		return retry.Stop
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return retry.Retry
	}
	return retry.Stop
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	attempts := 1
	if (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil && t.RetryMax > 0 {
		attempts += t.RetryMax
	}
	backoff := t.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	policy := retry.Policy{
		MaxAttempts:      attempts,
		InitialBackoff:   backoff,
		RateLimitBackoff: 4 * backoff,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			metrics.PlatformRetries.WithLabelValues(req.URL.Path).Inc()
		},
	}

	resp, err := retry.Do(req.Context(), policy, classify, func() (*http.Response, error) {
		if t.Limiter != nil {
			if err := t.Limiter.Wait(req.Context()); err != nil {
				return nil, err
			}
		}
		resp, err := base.RoundTrip(req.Clone(req.Context()))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusPreconditionFailed ||
			resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, &statusError{StatusCode: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		var perm *retry.PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Err
		}
		return nil, err
	}
	return resp, nil
}
