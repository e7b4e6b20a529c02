package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"valutahub/config"
	"valutahub/logger"
)

// Client wraps outbound provider requests with a shared rate limiter and a
// bounded retry policy. Connection failures and timeouts are retried after
// a fixed delay; a 429 waits an attempt-scaled delay before the next try;
// any other non-200 status fails immediately.
type Client struct {
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
	log        *logger.Entry
}

func NewClient(cfg config.RequestConfig, log *logger.Log) *Client {
	return &Client{
		http:       &http.Client{Timeout: cfg.Timeout()},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay(),
		log:        log.WithComponent("source-client"),
	}
}

// GetJSON fetches url and decodes the response body into out. The returned
// Meta describes the successful request; on failure the error is always an
// ExternalServiceError carrying the last underlying cause.
func (c *Client) GetJSON(ctx context.Context, service, url string, out interface{}) (Meta, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return Meta{}, &ExternalServiceError{Service: service, Reason: "request cancelled", Err: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return Meta{}, &ExternalServiceError{Service: service, Reason: "build request", Err: err}
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			// Connection failure or timeout, retry after the fixed delay
			lastErr = err
			c.log.WithError(err).WithFields(logger.Fields{
				"service": service,
				"attempt": attempt + 1,
			}).Warn("request failed, retrying")
			if err := sleepCtx(ctx, c.retryDelay); err != nil {
				return Meta{}, &ExternalServiceError{Service: service, Reason: "request cancelled", Err: err}
			}
			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			meta := Meta{
				RequestMs:  time.Since(start).Milliseconds(),
				StatusCode: resp.StatusCode,
				ETag:       resp.Header.Get("ETag"),
			}
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return Meta{}, &ExternalServiceError{Service: service, Reason: "malformed response body", Err: err}
			}
			return meta, nil

		case http.StatusTooManyRequests:
			// Rate limited: wait longer the more attempts we have burned
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = &ExternalServiceError{Service: service, Reason: "rate limited (429)"}
			wait := c.retryDelay * time.Duration(attempt+2)
			c.log.WithFields(logger.Fields{
				"service": service,
				"attempt": attempt + 1,
				"wait":    wait.String(),
			}).Warn("rate limited, backing off")
			if err := sleepCtx(ctx, wait); err != nil {
				return Meta{}, &ExternalServiceError{Service: service, Reason: "request cancelled", Err: err}
			}

		default:
			io.Copy(io.Discard, resp.Body)
			status := resp.StatusCode
			resp.Body.Close()
			return Meta{}, &ExternalServiceError{
				Service: service,
				Reason:  fmt.Sprintf("unexpected status %d %s", status, http.StatusText(status)),
			}
		}
	}

	return Meta{}, &ExternalServiceError{Service: service, Reason: "all retry attempts exhausted", Err: lastErr}
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
