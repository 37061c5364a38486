package domain

import "context"

// RecorderPort appends audit entries
// Callers treat failures as best-effort: a failed append never aborts the
// enclosing operation
type RecorderPort interface {
	Record(ctx context.Context, action, actor, details string) error
}

// ReaderPort serves the admin-gated read side
type ReaderPort interface {
	List(ctx context.Context, offset, limit int) (Page, error)
	Search(ctx context.Context, query string, offset, limit int) (Page, error)
}
