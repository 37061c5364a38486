// Package repo implements the Postgres persistence for every domain port
// the peer services consume over the rpc surface
package repo

import (
	"context"
	_ "embed"
	"strconv"
	"strings"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/store"
	cards "cardduel/internal/services/cards/domain"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema applies the idempotent DDL
func EnsureSchema(ctx context.Context, q store.RowQuerier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "apply schema")
	}
	return nil
}

// SeedCards inserts the canonical 39-card catalogue; existing rows win
func SeedCards(ctx context.Context, q store.RowQuerier) error {
	pool := cards.Generate()

	var sb strings.Builder
	sb.WriteString("INSERT INTO cards (id, type, power) VALUES ")
	args := make([]any, 0, len(pool)*3)
	for i, c := range pool {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 3
		sb.WriteString("($" + strconv.Itoa(n+1) + ", $" + strconv.Itoa(n+2) + ", $" + strconv.Itoa(n+3) + ")")
		args = append(args, c.ID, string(c.Suit), c.Power)
	}
	sb.WriteString(" ON CONFLICT (id) DO NOTHING")

	if _, err := q.Exec(ctx, sb.String(), args...); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "seed cards")
	}
	return nil
}
