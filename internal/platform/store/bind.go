package store

import "context"

// Binder is a tiny factory that binds a domain repo to a specific querier
type Binder[T any] interface {
	Bind(RowQuerier) T
}

// BindFunc lets you create a Binder from a function
type BindFunc[T any] func(RowQuerier) T

// Bind calls the underlying function
func (f BindFunc[T]) Bind(q RowQuerier) T { return f(q) }

// RequireQuerier panics early on programmer error (nil q)
func RequireQuerier(q RowQuerier) RowQuerier {
	if q == nil {
		panic("store: nil RowQuerier")
	}
	return q
}

// MustBind is a convenience that validates q then binds
func MustBind[T any](b Binder[T], q RowQuerier) T {
	return b.Bind(RequireQuerier(q))
}

// WithTx rebinds a repo inside a transaction and runs fn against the bound repo
func WithTx[T any](ctx context.Context, run TxRunner, b Binder[T], fn func(ctx context.Context, repo T) error) error {
	return run.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, b.Bind(q))
	})
}
