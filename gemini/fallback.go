package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrAllCredentialsFailed = errors.New("all credentials failed")

// Caller performs a single generateContent attempt with one API key.
type Caller interface {
	Call(ctx context.Context, endpoint, key string, req *Request) (*Response, error)
}

type CallerFunc func(ctx context.Context, endpoint, key string, req *Request) (*Response, error)

func (f CallerFunc) Call(ctx context.Context, endpoint, key string, req *Request) (*Response, error) {
	return f(ctx, endpoint, key, req)
}

// AttemptHook is told about every attempt. index is 0-based, err is nil on success.
type AttemptHook func(index int, err error)

// Fallback tries keys strictly in order and returns the first successful
// response. Keys after the successful one are never contacted.
func Fallback(ctx context.Context, caller Caller, endpoint string, req *Request, keys []string, hooks ...AttemptHook) (*Response, error) {
	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrAllCredentialsFailed, err)
		}
		resp, err := caller.Call(ctx, endpoint, key, req)
		for _, hook := range hooks {
			hook(i, err)
		}
		if err == nil {
			return resp, nil
		}
		log.Warnf("API key %d failed: %s", i+1, redact(err, key))
	}
	return nil, ErrAllCredentialsFailed
}

// redact removes key from err's message. Transport errors quote the full
// request URL, key query parameter included.
func redact(err error, key string) string {
	msg := err.Error()
	if key == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, key, "<redacted>")
	if escaped := url.QueryEscape(key); escaped != key {
		msg = strings.ReplaceAll(msg, escaped, "<redacted>")
	}
	return msg
}

// WithTimeout bounds every single attempt made through caller.
func WithTimeout(caller Caller, d time.Duration) Caller {
	if d <= 0 {
		return caller
	}
	return CallerFunc(func(ctx context.Context, endpoint, key string, req *Request) (*Response, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return caller.Call(ctx, endpoint, key, req)
	})
}

type Client struct {
	caller Caller
	keys   []string
	hooks  []AttemptHook
}

type Option func(*Client)

func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.caller = WithTimeout(c.caller, d)
	}
}

func WithAttemptHook(hook AttemptHook) Option {
	return func(c *Client) {
		if hook != nil {
			c.hooks = append(c.hooks, hook)
		}
	}
}

// NewClient copies keys, later changes to the caller's slice are not observed.
func NewClient(caller Caller, keys []string, opts ...Option) *Client {
	c := &Client{
		caller: caller,
		keys:   append([]string(nil), keys...),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Generate(ctx context.Context, endpoint string, req *Request) (*Response, error) {
	return Fallback(ctx, c.caller, endpoint, req, c.keys, c.hooks...)
}

func (c *Client) KeyCount() int {
	return len(c.keys)
}
