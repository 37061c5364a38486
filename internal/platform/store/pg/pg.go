// Package pg owns the pgx pool and its tracing hooks
package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config carries the connection settings the pool needs
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int
}

// QueryEvent is one observed query, emitted by the sql adapter
type QueryEvent struct {
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives query events
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// PG wraps the pgx pool with the tracer configuration the adapter reads
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// Open parses the URL and constructs the pool
// onConnect runs per new connection when non-nil (session settings, type registration)
func Open(ctx context.Context, cfg Config, tracer QueryTracer, onConnect func(ctx context.Context, conn *pgx.Conn) error) (*PG, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("pg: empty url")
	}

	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("pg: parse url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if onConnect != nil {
		pc.AfterConnect = onConnect
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("pg: new pool: %w", err)
	}

	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// Close releases the pool
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
