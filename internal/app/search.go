package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"stayfinder/internal/adapters/observability"
	"stayfinder/internal/domain"
)

// Provider returns a bounded candidate list for a set of search parameters:
// the live inventory provider when configured, the deterministic synthetic
// generator otherwise. A live-path failure degrades to synthetic data, so
// this stage never fails the pipeline.
type Provider struct {
	inv domain.InventoryClient // nil when no credential is configured
}

func NewProvider(inv domain.InventoryClient) *Provider {
	return &Provider{inv: inv}
}

func (p *Provider) Search(ctx context.Context, params domain.SearchParams) []domain.Hotel {
	if p.inv == nil {
		observability.ObserveFallback("search", domain.FailNotConfigured.String())
		return generateSynthetic(params)
	}

	hotels, err := p.inv.SearchHotels(ctx, params)
	if err != nil {
		kind := domain.Classify(err)
		observability.ObserveFallback("search", kind.String())
		log.Warn().Err(err).Stringer("kind", kind).Msg("inventory search failed, serving synthetic candidates")
		return generateSynthetic(params)
	}
	log.Info().Int("count", len(hotels)).Msg("inventory search ok")
	return hotels
}
