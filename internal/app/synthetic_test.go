package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"stayfinder/internal/app"
	"stayfinder/internal/domain"
)

func ptr[T any](v T) *T { return &v }

type fakeInventory struct {
	hotels []domain.Hotel
	err    error
	calls  int
}

func (f *fakeInventory) SearchHotels(ctx context.Context, p domain.SearchParams) ([]domain.Hotel, error) {
	f.calls++
	return f.hotels, f.err
}

func searchSynthetic(t *testing.T, p domain.SearchParams) []domain.Hotel {
	t.Helper()
	return app.NewProvider(nil).Search(context.Background(), p)
}

func TestSynthetic_Deterministic(t *testing.T) {
	p := domain.SearchParams{Location: ptr("Rome"), BudgetMax: ptr(250.0), Preferences: []string{"romantic"}}

	a := searchSynthetic(t, p)
	b := searchSynthetic(t, p)

	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("lengths: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].HotelID != b[i].HotelID {
			t.Fatalf("id[%d]: %s vs %s", i, a[i].HotelID, b[i].HotelID)
		}
		if *a[i].Lat != *b[i].Lat || *a[i].Lon != *b[i].Lon {
			t.Fatalf("coords differ for %s", a[i].HotelID)
		}
	}
}

func TestSynthetic_DistinctQueriesDistinctFingerprints(t *testing.T) {
	a := searchSynthetic(t, domain.SearchParams{Location: ptr("Rome")})
	b := searchSynthetic(t, domain.SearchParams{Location: ptr("Rome"), BudgetMax: ptr(250.0)})

	fpA := strings.SplitN(a[0].HotelID, "_", 2)[0]
	fpB := strings.SplitN(b[0].HotelID, "_", 2)[0]
	if fpA == fpB {
		t.Fatalf("fingerprints must differ: %s vs %s", fpA, fpB)
	}
	if len(fpA) != 8 || len(fpB) != 8 {
		t.Fatalf("fingerprint length: %q %q", fpA, fpB)
	}
}

func TestSynthetic_BudgetBoundsInclusive(t *testing.T) {
	hasSlug := func(hotels []domain.Hotel, slug string) bool {
		for _, h := range hotels {
			if strings.Contains(h.HotelID, "_"+slug+"_") {
				return true
			}
		}
		return false
	}

	// 180.00 is an exact catalog price; at the bound it stays in.
	in := searchSynthetic(t, domain.SearchParams{Location: ptr("Paris"), BudgetMax: ptr(180.0)})
	if !hasSlug(in, "boutique") {
		t.Fatalf("price equal to budget_max must be included")
	}
	out := searchSynthetic(t, domain.SearchParams{Location: ptr("Paris"), BudgetMax: ptr(179.99)})
	if hasSlug(out, "boutique") {
		t.Fatalf("price above budget_max must be excluded")
	}

	min := searchSynthetic(t, domain.SearchParams{Location: ptr("Paris"), BudgetMin: ptr(350.0)})
	if len(min) != 1 || !hasSlug(min, "luxury") {
		t.Fatalf("budget_min filter: %d hotels", len(min))
	}
	for _, h := range out {
		if h.Price != nil && *h.Price > 179.99 {
			t.Fatalf("hotel %s priced %v above ceiling", h.HotelID, *h.Price)
		}
	}
}

func TestSynthetic_CapAndCatalogSize(t *testing.T) {
	hotels := searchSynthetic(t, domain.SearchParams{Location: ptr("Berlin")})
	if len(hotels) == 0 || len(hotels) > 12 {
		t.Fatalf("result size: %d", len(hotels))
	}
	seen := map[string]bool{}
	for _, h := range hotels {
		if seen[h.HotelID] {
			t.Fatalf("duplicate id %s", h.HotelID)
		}
		seen[h.HotelID] = true
		if h.Name == nil || h.Price == nil || h.City == nil || len(h.RawJSON) == 0 {
			t.Fatalf("incomplete hotel %s", h.HotelID)
		}
		if *h.City != "Berlin" {
			t.Fatalf("city: %s", *h.City)
		}
	}
}

func TestSynthetic_PreferenceBias(t *testing.T) {
	slugs := func(hotels []domain.Hotel) []string {
		out := make([]string, len(hotels))
		for i, h := range hotels {
			out[i] = strings.SplitN(h.HotelID, "_", 3)[1]
		}
		return out
	}

	// A matched preference keeps only the candidates that scored.
	hotels := searchSynthetic(t, domain.SearchParams{Location: ptr("Paris"), Preferences: []string{"budget"}})
	if got := slugs(hotels); len(got) != 1 || got[0] != "budget" {
		t.Fatalf("budget preference must keep only the scoring archetype, got %v", got)
	}

	// Pool-amenity archetypes survive a pool preference, in catalog order;
	// everything without a pool is dropped.
	hotels = searchSynthetic(t, domain.SearchParams{Location: ptr("Paris"), Preferences: []string{"pool"}})
	want := []string{"luxury", "resort", "family", "mid", "spa"}
	got := slugs(hotels)
	if len(got) != len(want) {
		t.Fatalf("pool preference: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pool preference order at %d: %v", i, got)
		}
	}
}

func TestSynthetic_UnmatchedPreferenceKeepsCatalogOrder(t *testing.T) {
	plain := searchSynthetic(t, domain.SearchParams{Location: ptr("Paris")})
	biased := searchSynthetic(t, domain.SearchParams{Location: ptr("Paris"), Preferences: []string{"mountain"}})
	if len(plain) != len(biased) {
		t.Fatalf("lengths: %d vs %d", len(plain), len(biased))
	}
	for i := range plain {
		// Fingerprints differ (preferences are part of the query key) but the
		// archetype order must be untouched when nothing scores.
		slugPlain := strings.SplitN(plain[i].HotelID, "_", 3)[1]
		slugBiased := strings.SplitN(biased[i].HotelID, "_", 3)[1]
		if slugPlain != slugBiased {
			t.Fatalf("order changed at %d: %s vs %s", i, slugPlain, slugBiased)
		}
	}
}

func TestSynthetic_CoordinatesNearCity(t *testing.T) {
	hotels := searchSynthetic(t, domain.SearchParams{Location: ptr("Rome")})
	for _, h := range hotels {
		if d := *h.Lat - 41.9028; d > 0.01 || d < -0.01 {
			t.Fatalf("lat offset too large for %s: %v", h.HotelID, d)
		}
		if d := *h.Lon - 12.4964; d > 0.01 || d < -0.01 {
			t.Fatalf("lng offset too large for %s: %v", h.HotelID, d)
		}
	}
}

func TestSearch_LiveFailureFallsBackToSynthetic(t *testing.T) {
	inv := &fakeInventory{err: errors.New("upstream said 429")}
	p := app.NewProvider(inv)

	hotels := p.Search(context.Background(), domain.SearchParams{Location: ptr("Paris")})
	if inv.calls != 1 {
		t.Fatalf("calls: %d", inv.calls)
	}
	if len(hotels) == 0 {
		t.Fatalf("fallback must produce candidates")
	}
}

func TestSearch_LivePathUsedWhenHealthy(t *testing.T) {
	inv := &fakeInventory{hotels: []domain.Hotel{{HotelID: "live-1", Name: ptr("Live Hotel")}}}
	p := app.NewProvider(inv)

	hotels := p.Search(context.Background(), domain.SearchParams{Location: ptr("Paris")})
	if len(hotels) != 1 || hotels[0].HotelID != "live-1" {
		t.Fatalf("expected live result, got %+v", hotels)
	}
}
