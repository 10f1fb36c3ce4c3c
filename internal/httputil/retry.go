package httputil

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kjannette/coinchat/internal/logging"
)

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

var DefaultRetry = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
	MaxDelay:    10 * time.Second,
}

// NoRetry sends each request exactly once.
var NoRetry = RetryConfig{MaxAttempts: 1}

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
	Retry   RetryConfig
	// Tag names the client in retry log lines.
	Tag string
}

// StatusError is returned when the final attempt still got a 5xx.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// NewClient builds a resty client that retries transport errors and 5xx
// responses with exponential backoff, capped at cfg.Retry.MaxDelay. 4xx
// responses are never retried.
func NewClient(cfg ClientConfig) *resty.Client {
	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = DefaultRetry.MaxAttempts
	}
	tag := cfg.Tag
	if tag == "" {
		tag = "retry"
	}
	log := logging.Component(tag)

	c := resty.New()
	if cfg.BaseURL != "" {
		c.SetBaseURL(cfg.BaseURL)
	}
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	c.SetHeaders(cfg.Headers)

	c.SetRetryCount(retry.MaxAttempts - 1)
	c.SetRetryWaitTime(retry.BaseDelay)
	c.SetRetryMaxWaitTime(retry.MaxDelay)
	c.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || (r != nil && r.StatusCode() >= 500)
	})
	c.AddRetryHook(func(r *resty.Response, err error) {
		if err == nil && r != nil {
			err = fmt.Errorf("HTTP %d", r.StatusCode())
		}
		log.Warnf("attempt failed: %v", err)
	})
	return c
}

// Do sends one logical request through client, bound to ctx. The send
// function issues the verb, e.g. func(r *resty.Request) { return r.Get("/x") }.
// Any response below 500 is returned as-is for the caller to inspect.
func Do(ctx context.Context, client *resty.Client, send func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	resp, err := send(client.R().SetContext(ctx))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	if resp.StatusCode() >= 500 {
		return resp, &StatusError{StatusCode: resp.StatusCode(), Body: truncate(resp.String(), 512)}
	}
	return resp, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
