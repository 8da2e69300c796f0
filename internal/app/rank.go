package app

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"stayfinder/internal/adapters/observability"
	"stayfinder/internal/domain"
)

// Ranker orders candidates by relevance to the original demand text. The
// inference strategy may return a strict subset; the deterministic fallback
// ranks every candidate that has an identifier and never drops any.
type Ranker struct {
	inf domain.InferenceClient // nil when no credential is configured
}

func NewRanker(inf domain.InferenceClient) *Ranker {
	return &Ranker{inf: inf}
}

func (r *Ranker) Rank(ctx context.Context, demand string, hotels []domain.Hotel) []string {
	if len(hotels) == 0 {
		return nil
	}
	if r.inf == nil {
		observability.ObserveFallback("rank", domain.FailNotConfigured.String())
		return fallbackRank(demand, hotels)
	}

	ids, err := r.inf.RankHotels(ctx, demand, summarize(hotels))
	if err != nil {
		kind := domain.Classify(err)
		observability.ObserveFallback("rank", kind.String())
		log.Warn().Err(err).Stringer("kind", kind).Msg("inference ranking failed, using rule-based fallback")
		return fallbackRank(demand, hotels)
	}
	return ids
}

// summarize builds the minimized per-candidate payload for the inference
// call: identifier, truncated name, city, price, best-available rating and
// truncated amenity text.
func summarize(hotels []domain.Hotel) []domain.HotelSummary {
	out := make([]domain.HotelSummary, 0, len(hotels))
	for _, h := range hotels {
		if h.HotelID == "" {
			continue
		}
		name := truncateRunes(strOrEmpty(h.Name), 50)
		rating := h.Rating
		if rating == nil {
			rating = h.ReviewScore
		}
		amen := truncateRunes(strings.Join(firstN(h.Amenities, 5), ", "), 100)
		out = append(out, domain.HotelSummary{
			ID:        h.HotelID,
			Name:      name,
			City:      strOrEmpty(h.City),
			Price:     h.Price,
			Rating:    rating,
			Amenities: amen,
		})
	}
	return out
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// truncateRunes cuts on rune boundaries; names and addresses carry accented
// characters and a byte slice could split one.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// ceilingPatterns detect a budget ceiling in the raw demand. The bare
// budget/cheap/affordable markers carry no figure and imply a low ceiling.
var ceilingPatterns = []struct {
	re       *regexp.Regexp
	implicit float64 // used when the pattern has no capture group
}{
	{regexp.MustCompile(`under\s+(\d+)`), 0},
	{regexp.MustCompile(`below\s+(\d+)`), 0},
	{regexp.MustCompile(`less\s+than\s+(\d+)`), 0},
	{regexp.MustCompile(`up\s+to\s+(\d+)`), 0},
	{regexp.MustCompile(`(\d+)\s*€`), 0},
	{regexp.MustCompile(`(\d+)\s*eur`), 0},
	{regexp.MustCompile(`budget`), 100},
	{regexp.MustCompile(`cheap`), 100},
	{regexp.MustCompile(`affordable`), 100},
}

func detectCeiling(low string) *float64 {
	for _, p := range ceilingPatterns {
		m := p.re.FindStringSubmatch(low)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				return &f
			}
			continue
		}
		v := p.implicit
		return &v
	}
	return nil
}

// demandKeywords mirror the preference families of the synthetic bias but
// are evaluated against the demand text directly.
var demandKeywords = []struct {
	family   string
	keywords []string
}{
	{"luxury", []string{"luxury", "premium", "5-star", "five star"}},
	{"budget", []string{"budget", "cheap", "affordable", "economy"}},
	{"romantic", []string{"romantic", "honeymoon", "couple"}},
	{"family", []string{"family", "kids", "children", "family-friendly"}},
	{"business", []string{"business", "corporate", "conference"}},
	{"beach", []string{"beach", "seaside", "ocean", "coast"}},
	{"pool", []string{"pool", "swimming"}},
	{"spa", []string{"spa", "wellness", "massage"}},
}

// fallbackRank scores every candidate with a non-empty identifier and
// returns all of them ranked: the fallback only orders, it never drops.
func fallbackRank(demand string, hotels []domain.Hotel) []string {
	low := strings.ToLower(demand)
	ceiling := detectCeiling(low)

	var families []string
	for _, f := range demandKeywords {
		for _, kw := range f.keywords {
			if strings.Contains(low, kw) {
				families = append(families, f.family)
				break
			}
		}
	}
	has := func(family string) bool {
		for _, f := range families {
			if f == family {
				return true
			}
		}
		return false
	}

	log.Debug().Strs("families", families).Msg("fallback ranking demand signals")

	type scored struct {
		id    string
		score float64
	}
	var out []scored
	for _, h := range hotels {
		if h.HotelID == "" {
			continue
		}
		price := 0.0
		hasPrice := h.Price != nil
		if hasPrice {
			price = *h.Price
		}
		name := strings.ToLower(strOrEmpty(h.Name))
		desc := strings.ToLower(strOrEmpty(h.Description))
		amen := strings.ToLower(strings.Join(h.Amenities, " "))
		rating := 0.0
		if h.Rating != nil {
			rating = *h.Rating
		} else if h.ReviewScore != nil {
			rating = *h.ReviewScore
		}

		score := 0.0
		if ceiling != nil && hasPrice {
			if price <= *ceiling {
				score += 10
			} else {
				score -= 5
			}
		}
		if has("luxury") {
			if rating >= 4.5 {
				score += 5
			}
			if strings.Contains(name, "luxury") || strings.Contains(name, "resort") || strings.Contains(name, "grand") {
				score += 3
			}
		}
		if has("budget") {
			if hasPrice && price <= 100 {
				score += 5
			}
			if strings.Contains(name, "budget") || strings.Contains(name, "inn") || strings.Contains(name, "hostel") {
				score += 3
			}
		}
		if has("romantic") && containsAny(amen+" "+desc, "spa", "romantic", "boutique") {
			score += 5
		}
		if has("family") && containsAny(amen+" "+desc, "pool", "kids", "family", "playground") {
			score += 5
		}
		if has("beach") && containsAny(amen+" "+desc+" "+name, "beach", "ocean", "seaside", "coast") {
			score += 5
		}
		if has("pool") && strings.Contains(amen, "pool") {
			score += 5
		}
		if has("spa") && strings.Contains(amen, "spa") {
			score += 5
		}

		score += rating * 1.5
		score += 1 // baseline so a preference mismatch never excludes anyone

		out = append(out, scored{id: h.HotelID, score: score})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })

	ids := make([]string, len(out))
	for i, s := range out {
		ids[i] = s.id
	}
	return ids
}

func containsAny(haystack string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(haystack, s) {
			return true
		}
	}
	return false
}
