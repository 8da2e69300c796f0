package app_test

import (
	"context"
	"errors"
	"testing"

	"stayfinder/internal/app"
	"stayfinder/internal/domain"
)

// ---- fakes ----

type fakeInference struct {
	params       domain.SearchParams
	ids          []string
	err          error
	rankErr      error
	calls        int
	gotSummaries []domain.HotelSummary
}

func (f *fakeInference) ExtractParams(ctx context.Context, demand string) (domain.SearchParams, error) {
	f.calls++
	if f.err != nil {
		return domain.SearchParams{}, f.err
	}
	return f.params, nil
}

func (f *fakeInference) RankHotels(ctx context.Context, demand string, hotels []domain.HotelSummary) ([]string, error) {
	f.calls++
	f.gotSummaries = hotels
	if f.rankErr != nil {
		return nil, f.rankErr
	}
	return f.ids, nil
}

// ---- tests ----

func TestExtract_FallbackLocationBudgetPreferences(t *testing.T) {
	e := app.NewExtractor(nil)

	p := e.Extract(context.Background(), "Romantic boutique hotel in Paris under 200 euros for 2 adults")

	if p.Location == nil || *p.Location != "Paris" {
		t.Fatalf("location: %+v", p.Location)
	}
	if p.BudgetMax == nil || *p.BudgetMax != 200.0 {
		t.Fatalf("budget_max: %+v", p.BudgetMax)
	}
	if p.BudgetMin != nil {
		t.Fatalf("budget_min must never be inferred, got %v", *p.BudgetMin)
	}
	if len(p.Preferences) != 1 || p.Preferences[0] != "romantic" {
		t.Fatalf("preferences: %v", p.Preferences)
	}
	if p.Adults != 2 || p.Children != 0 || p.Rooms != 1 {
		t.Fatalf("occupancy: adults=%d children=%d rooms=%d", p.Adults, p.Children, p.Rooms)
	}
	if p.CheckIn != nil || p.CheckOut != nil {
		t.Fatalf("dates must never be inferred by the fallback")
	}
}

func TestExtract_FallbackBudgetPatternPriority(t *testing.T) {
	e := app.NewExtractor(nil)

	p := e.Extract(context.Background(), "hotels under 150")
	if p.BudgetMax == nil || *p.BudgetMax != 150.0 {
		t.Fatalf("budget_max: %+v", p.BudgetMax)
	}

	// "under N" outranks the bare currency pattern even when both match.
	p = e.Extract(context.Background(), "under 150 but I could pay 300€")
	if p.BudgetMax == nil || *p.BudgetMax != 150.0 {
		t.Fatalf("pattern priority: %+v", p.BudgetMax)
	}
}

func TestExtract_FallbackPreferenceOrderIsFixed(t *testing.T) {
	e := app.NewExtractor(nil)

	// Keywords appear in reverse tag order in the demand; output follows
	// tag-iteration order, not demand order.
	p := e.Extract(context.Background(), "city break at a luxury family romantic place")
	want := []string{"romantic", "family", "luxury", "city"}
	if len(p.Preferences) != len(want) {
		t.Fatalf("preferences: %v", p.Preferences)
	}
	for i := range want {
		if p.Preferences[i] != want[i] {
			t.Fatalf("preferences[%d] = %s, want %s (%v)", i, p.Preferences[i], want[i], p.Preferences)
		}
	}
}

func TestExtract_FallbackGazetteerFirstHitWins(t *testing.T) {
	e := app.NewExtractor(nil)

	// "italy" precedes "rome" in the gazetteer priority order.
	p := e.Extract(context.Background(), "a trip to rome in italy")
	if p.Location == nil || *p.Location != "Italy" {
		t.Fatalf("location: %+v", p.Location)
	}
}

func TestExtract_PrimaryUsedWhenHealthy(t *testing.T) {
	loc := "Tokyo"
	inf := &fakeInference{params: domain.SearchParams{Location: &loc, Adults: 3, Rooms: 2, Preferences: []string{}}}
	e := app.NewExtractor(inf)

	p := e.Extract(context.Background(), "whatever")
	if p.Location == nil || *p.Location != "Tokyo" || p.Adults != 3 {
		t.Fatalf("expected primary result, got %+v", p)
	}
	if inf.calls != 1 {
		t.Fatalf("calls: %d", inf.calls)
	}
}

func TestExtract_ThrottledFallsBack(t *testing.T) {
	inf := &fakeInference{err: errors.New("status 429: insufficient_quota")}
	e := app.NewExtractor(inf)

	p := e.Extract(context.Background(), "hotel in Paris under 100")
	if p.Location == nil || *p.Location != "Paris" {
		t.Fatalf("expected fallback extraction, got %+v", p)
	}
	if p.BudgetMax == nil || *p.BudgetMax != 100.0 {
		t.Fatalf("budget_max: %+v", p.BudgetMax)
	}
}

func TestExtract_MalformedFallsBack(t *testing.T) {
	inf := &fakeInference{err: domain.ErrMalformedResponse}
	e := app.NewExtractor(inf)

	p := e.Extract(context.Background(), "family hotel in Barcelona")
	if p.Location == nil || *p.Location != "Barcelona" {
		t.Fatalf("expected fallback extraction, got %+v", p)
	}
	if len(p.Preferences) != 1 || p.Preferences[0] != "family" {
		t.Fatalf("preferences: %v", p.Preferences)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want domain.FailKind
	}{
		{nil, domain.FailNone},
		{domain.ErrNotConfigured, domain.FailNotConfigured},
		{domain.ErrThrottled, domain.FailThrottled},
		{domain.ErrMalformedResponse, domain.FailMalformed},
		{errors.New("Rate Limit exceeded"), domain.FailThrottled},
		{errors.New("got HTTP 429"), domain.FailThrottled},
		{errors.New("insufficient_quota for this key"), domain.FailThrottled},
		{errors.New("connection refused"), domain.FailTransient},
	}
	for _, c := range cases {
		if got := domain.Classify(c.err); got != c.want {
			t.Fatalf("Classify(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
