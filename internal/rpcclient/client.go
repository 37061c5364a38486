// Package rpcclient implements the typed HTTP clients the services use to
// reach each other's internal rpc surfaces. Every call carries the caller's
// service credential and decodes the standard response envelope, so the
// error taxonomy survives the hop
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/trust"
)

// DefaultTimeout bounds one rpc round trip
const DefaultTimeout = 5 * time.Second

// Client is the shared transport for one peer base URL
type Client struct {
	base string
	key  string
	http *http.Client
}

// Option mutates a Client during New
type Option func(*Client)

// WithHTTPClient swaps the underlying transport, e.g. for mutual TLS
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout adjusts the per-call deadline
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New builds a client for one peer, presenting the calling service's key
func New(baseURL, serviceKey string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		key:  serviceKey,
		http: &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// envelope mirrors the transport reply with the payload left raw
type envelope struct {
	StatusCode int             `json:"status_code"`
	Code       perr.ErrorCode  `json:"code"`
	Error      string          `json:"error"`
	Details    map[string]any  `json:"details"`
	Data       json.RawMessage `json:"data"`
}

// call posts in as JSON and decodes the envelope's data into out
func (c *Client) call(ctx context.Context, path string, in, out any) error {
	body := []byte("{}")
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return perr.Wrap(err, perr.ErrorCodeUnknown, "encode rpc request")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "build rpc request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(trust.Header, c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "rpc %s", path)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "rpc %s: bad envelope", path)
	}

	if resp.StatusCode >= 400 || env.Error != "" {
		if env.Error == "" {
			return perr.Unavailablef("rpc %s: status %d", path, resp.StatusCode)
		}
		return perr.FromWire(perr.Wire{Code: env.Code, Message: env.Error, Details: env.Details})
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "rpc %s: bad payload", path)
	}
	return nil
}
