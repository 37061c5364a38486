package rpcclient

import (
	"context"

	dom "cardduel/internal/services/logs/domain"
)

// Recorder appends audit entries over the persistence adapter's rpc surface
type Recorder struct{ c *Client }

// NewRecorder wraps a client for audit appends
func NewRecorder(c *Client) *Recorder { return &Recorder{c: c} }

var _ dom.RecorderPort = (*Recorder)(nil)

// Record appends one audit row
func (r *Recorder) Record(ctx context.Context, action, actor, details string) error {
	return r.c.call(ctx, "/rpc/logs/record", map[string]string{
		"action": action, "actor": actor, "details": details,
	}, nil)
}

// LogReader serves the admin-gated read side over rpc
type LogReader struct{ c *Client }

// NewLogReader wraps a client for audit reads
func NewLogReader(c *Client) *LogReader { return &LogReader{c: c} }

var _ dom.ReaderPort = (*LogReader)(nil)

// List returns a page of the log, newest first
func (r *LogReader) List(ctx context.Context, offset, limit int) (dom.Page, error) {
	var out dom.Page
	err := r.c.call(ctx, "/rpc/logs/list", map[string]int{"offset": offset, "limit": limit}, &out)
	return out, err
}

// Search filters the log by a free-text query
func (r *LogReader) Search(ctx context.Context, query string, offset, limit int) (dom.Page, error) {
	var out dom.Page
	err := r.c.call(ctx, "/rpc/logs/search", map[string]any{
		"query": query, "offset": offset, "limit": limit,
	}, &out)
	return out, err
}
