// Package service provides the card catalogue service implementation
package service

import (
	"context"

	"cardduel/internal/services/cards/catalog"
	dom "cardduel/internal/services/cards/domain"
)

// Service implements domain.CatalogPort and domain.SamplerPort over the in-memory catalogue
type Service struct {
	Catalog *catalog.Catalog
}

// New constructs the cards service with a required catalogue
func New(c *catalog.Catalog) *Service {
	if c == nil {
		panic("cards: nil catalog")
	}
	return &Service{Catalog: c}
}

// List implements domain.CatalogPort
func (s *Service) List(ctx context.Context) ([]dom.Card, error) {
	return s.Catalog.List(ctx)
}

// BySuit implements domain.CatalogPort
func (s *Service) BySuit(ctx context.Context, suit dom.Suit) ([]dom.Card, error) {
	return s.Catalog.BySuit(ctx, suit)
}

// ByID implements domain.CatalogPort
func (s *Service) ByID(ctx context.Context, id int) (dom.Card, error) {
	return s.Catalog.ByID(ctx, id)
}

// RandomDeck implements domain.SamplerPort
func (s *Service) RandomDeck(ctx context.Context, size int) ([]dom.Card, error) {
	if size == 0 {
		size = dom.DeckSize
	}
	return s.Catalog.RandomDeck(ctx, size)
}

// RandomOfSuit implements domain.SamplerPort
func (s *Service) RandomOfSuit(ctx context.Context, suit dom.Suit) (dom.Card, error) {
	return s.Catalog.RandomOfSuit(ctx, suit)
}

// Stats summarizes the catalogue
func (s *Service) Stats(ctx context.Context) (dom.Stats, error) {
	return s.Catalog.Stats(ctx)
}
