package repo

import (
	"context"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/store"
	dom "cardduel/internal/services/logs/domain"
)

// LogsPG binds the append-only audit log repo to a querier
type LogsPG struct{}

// NewLogs returns the log repo binder
func NewLogs() store.Binder[LogStore] { return LogsPG{} }

// LogStore is both sides of the audit log on one repo
type LogStore interface {
	dom.RecorderPort
	dom.ReaderPort
}

// Bind implements store.Binder
func (LogsPG) Bind(q store.RowQuerier) LogStore { return &logQueries{q: q} }

type logQueries struct{ q store.RowQuerier }

var _ LogStore = (*logQueries)(nil)

// Record appends one audit row; empty actor and details store as NULL
func (r *logQueries) Record(ctx context.Context, action, actor, details string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO logs (action, actor, details)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))`,
		action, actor, details)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "append log")
	}
	return nil
}

// List returns a page of the log, newest first
func (r *logQueries) List(ctx context.Context, offset, limit int) (dom.Page, error) {
	return r.page(ctx, `
		SELECT id, action, actor, details, created_at
		FROM logs
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2`,
		`SELECT COUNT(*) FROM logs`,
		[]any{offset, limit}, nil, offset, limit)
}

// Search filters the log by a case-insensitive match on action, actor or details
func (r *logQueries) Search(ctx context.Context, query string, offset, limit int) (dom.Page, error) {
	pattern := "%" + query + "%"
	return r.page(ctx, `
		SELECT id, action, actor, details, created_at
		FROM logs
		WHERE action ILIKE $1 OR actor ILIKE $1 OR details ILIKE $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3`,
		`SELECT COUNT(*) FROM logs WHERE action ILIKE $1 OR actor ILIKE $1 OR details ILIKE $1`,
		[]any{pattern, offset, limit}, []any{pattern}, offset, limit)
}

func (r *logQueries) page(ctx context.Context, listSQL, countSQL string, listArgs, countArgs []any, offset, limit int) (dom.Page, error) {
	page := dom.Page{Entries: []dom.Entry{}, Offset: offset, Limit: limit}

	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&page.Total); err != nil {
		return dom.Page{}, perr.Wrap(err, perr.ErrorCodeDB, "count logs")
	}

	rows, err := r.q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return dom.Page{}, perr.Wrap(err, perr.ErrorCodeDB, "list logs")
	}
	defer rows.Close()

	for rows.Next() {
		var e dom.Entry
		if err := rows.Scan(&e.ID, &e.Action, &e.Actor, &e.Details, &e.CreatedAt); err != nil {
			return dom.Page{}, perr.Wrap(err, perr.ErrorCodeDB, "scan log")
		}
		page.Entries = append(page.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return dom.Page{}, perr.Wrap(err, perr.ErrorCodeDB, "list logs rows")
	}
	return page, nil
}
