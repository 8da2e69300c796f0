package app

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"stayfinder/internal/adapters/observability"
	"stayfinder/internal/domain"
)

// Extractor turns a free-form demand into SearchParams. The inference
// strategy is tried first; every classified failure is absorbed by the
// deterministic rule-based fallback, so Extract never fails a request.
type Extractor struct {
	inf domain.InferenceClient // nil when no credential is configured
}

func NewExtractor(inf domain.InferenceClient) *Extractor {
	return &Extractor{inf: inf}
}

func (e *Extractor) Extract(ctx context.Context, demand string) domain.SearchParams {
	if e.inf == nil {
		observability.ObserveFallback("extract", domain.FailNotConfigured.String())
		return fallbackExtract(demand)
	}

	p, err := e.inf.ExtractParams(ctx, demand)
	if err != nil {
		kind := domain.Classify(err)
		observability.ObserveFallback("extract", kind.String())
		log.Warn().Err(err).Stringer("kind", kind).Msg("inference extraction failed, using rule-based fallback")
		return fallbackExtract(demand)
	}
	return p
}

// ---- rule-based fallback ----

// knownLocations is matched in order; the first hit wins. Order is the only
// ambiguity resolution there is.
var knownLocations = []string{
	"italy", "france", "spain", "paris", "rome", "london", "berlin", "amsterdam",
	"vienna", "prague", "barcelona", "madrid", "milan", "venice", "florence",
	"lake como", "tuscany", "santorini", "mykonos", "bali", "thailand",
}

// budgetPatterns set budget_max only; a minimum is never inferred. First
// match in priority order wins.
var budgetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`under\s+(\d+)`),
	regexp.MustCompile(`below\s+(\d+)`),
	regexp.MustCompile(`less\s+than\s+(\d+)`),
	regexp.MustCompile(`up\s+to\s+(\d+)`),
	regexp.MustCompile(`max\s+(\d+)`),
	regexp.MustCompile(`maximum\s+(\d+)`),
	regexp.MustCompile(`(\d+)\s*€`),
	regexp.MustCompile(`(\d+)\s*eur`),
	regexp.MustCompile(`(\d+)\s*euro`),
}

// preferenceTags is iterated in fixed order so the resulting preference list
// is stable regardless of keyword position in the demand.
var preferenceTags = []struct {
	tag      string
	keywords []string
}{
	{"romantic", []string{"romantic", "romance", "couple", "honeymoon"}},
	{"family", []string{"family", "family-friendly", "kids", "children"}},
	{"luxury", []string{"luxury", "luxurious", "5-star", "five star"}},
	{"beach", []string{"beach", "seaside", "coastal", "ocean"}},
	{"mountain", []string{"mountain", "alpine", "ski"}},
	{"city", []string{"city", "urban", "downtown"}},
}

var adultsPattern = regexp.MustCompile(`(\d+)\s+adult`)

// fallbackExtract is the deterministic offline strategy. Check-in/check-out
// are never inferred here; that precision gap is intentional.
func fallbackExtract(demand string) domain.SearchParams {
	low := strings.ToLower(demand)

	p := domain.SearchParams{Adults: 1, Children: 0, Rooms: 1, Preferences: []string{}}

	for _, loc := range knownLocations {
		if strings.Contains(low, loc) {
			t := titleCase(loc)
			p.Location = &t
			break
		}
	}

	for _, re := range budgetPatterns {
		if m := re.FindStringSubmatch(low); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				p.BudgetMax = &f
			}
			break
		}
	}

	for _, pt := range preferenceTags {
		for _, kw := range pt.keywords {
			if strings.Contains(low, kw) {
				p.Preferences = append(p.Preferences, pt.tag)
				break
			}
		}
	}

	if m := adultsPattern.FindStringSubmatch(low); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			p.Adults = n
		}
	}

	return p
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
