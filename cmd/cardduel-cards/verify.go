package main

import (
	"context"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/services/cards/catalog"
	dom "cardduel/internal/services/cards/domain"
)

// verifySeed compares the in-memory pool against the seeded rows card by card
func verifySeed(ctx context.Context, cat *catalog.Catalog, seeded dom.CatalogPort) error {
	want, err := cat.List(ctx)
	if err != nil {
		return err
	}
	got, err := seeded.List(ctx)
	if err != nil {
		return err
	}
	if len(got) != len(want) {
		return perr.Internalf("seeded catalogue has %d cards, want %d", len(got), len(want))
	}

	byID := make(map[int]dom.Card, len(got))
	for _, c := range got {
		byID[c.ID] = c
	}
	for _, w := range want {
		g, ok := byID[w.ID]
		if !ok || g != w {
			return perr.Internalf("seeded card %d is %+v, want %+v", w.ID, g, w)
		}
	}
	return nil
}
