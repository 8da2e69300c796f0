package domain

import "context"

// InferenceClient is the language-model side of both strategy pairs. Errors
// returned here are classified with Classify to pick primary vs. fallback.
type InferenceClient interface {
	ExtractParams(ctx context.Context, demand string) (SearchParams, error)
	RankHotels(ctx context.Context, demand string, hotels []HotelSummary) ([]string, error)
}

// InventoryClient fetches live hotel candidates from the inventory provider.
type InventoryClient interface {
	SearchHotels(ctx context.Context, p SearchParams) ([]Hotel, error)
}

// HotelStore persists the last-seen full record per hotel id.
// Upsert is last-write-wins per id; Get returns ErrNotFound when absent.
type HotelStore interface {
	UpsertHotel(ctx context.Context, rec HotelRecord) error
	GetHotel(ctx context.Context, hotelID string) (HotelRecord, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
