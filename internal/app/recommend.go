package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"stayfinder/internal/domain"
)

// Stage ports of the pipeline. The concrete services above implement them;
// tests substitute fakes.
type ParamExtractor interface {
	Extract(ctx context.Context, demand string) domain.SearchParams
}

type CandidateSource interface {
	Search(ctx context.Context, params domain.SearchParams) []domain.Hotel
}

type HotelRanker interface {
	Rank(ctx context.Context, demand string, hotels []domain.Hotel) []string
}

// RecommendationService runs the demand-to-match pipeline:
// extract → search → persist (best-effort) → rank → hydrate.
type RecommendationService struct {
	extractor ParamExtractor
	provider  CandidateSource
	ranker    HotelRanker
	store     domain.HotelStore
	cache     domain.Cache
	paramsTTL time.Duration
}

func NewRecommendationService(e ParamExtractor, p CandidateSource, r HotelRanker,
	store domain.HotelStore, cache domain.Cache, paramsTTL time.Duration) *RecommendationService {
	return &RecommendationService{
		extractor: e,
		provider:  p,
		ranker:    r,
		store:     store,
		cache:     cache,
		paramsTTL: paramsTTL,
	}
}

func (s *RecommendationService) Recommend(ctx context.Context, demand string) (domain.MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.MatchResult{}, err
	}

	params := s.extractParams(ctx, demand)
	log.Info().Interface("params", params).Msg("extracted search parameters")

	hotels := s.provider.Search(ctx, params)
	if len(hotels) == 0 {
		return domain.MatchResult{
			Demand:  demand,
			Params:  params,
			Hotels:  []domain.Hotel{},
			Total:   0,
			Message: "No hotels found matching your criteria.",
		}, nil
	}

	s.persist(ctx, hotels)

	ids := s.ranker.Rank(ctx, demand, hotels)
	matched := s.hydrate(ctx, ids, hotels)

	return domain.MatchResult{
		Demand:  demand,
		Params:  params,
		Hotels:  matched,
		Total:   len(matched),
		Message: fmt.Sprintf("Found %d hotels matching your preferences.", len(matched)),
	}, nil
}

// extractParams consults the cache before running the extractor; both cache
// paths are best-effort.
func (s *RecommendationService) extractParams(ctx context.Context, demand string) domain.SearchParams {
	if s.cache == nil {
		return s.extractor.Extract(ctx, demand)
	}
	key := paramsKey(demand)
	var cached domain.SearchParams
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached
	}
	params := s.extractor.Extract(ctx, demand)
	_ = s.cache.Set(ctx, key, params, int(s.paramsTTL.Seconds()))
	return params
}

func paramsKey(demand string) string {
	sum := sha1.Sum([]byte(demand))
	return "params:" + hex.EncodeToString(sum[:])
}

// persist upserts every identified candidate; store failures are logged and
// never block the pipeline, which proceeds on the in-memory set.
func (s *RecommendationService) persist(ctx context.Context, hotels []domain.Hotel) {
	if s.store == nil {
		return
	}
	saved := 0
	for _, h := range hotels {
		if h.HotelID == "" {
			continue
		}
		payload := h.RawJSON
		if len(payload) == 0 {
			b, err := json.Marshal(h)
			if err != nil {
				log.Warn().Err(err).Str("hotel_id", h.HotelID).Msg("marshal candidate for persistence failed")
				continue
			}
			payload = b
		}
		if err := s.store.UpsertHotel(ctx, domain.HotelRecord{HotelID: h.HotelID, Payload: payload}); err != nil {
			log.Warn().Err(err).Str("hotel_id", h.HotelID).Msg("persist candidate failed, continuing with in-memory data")
			continue
		}
		saved++
	}
	log.Info().Int("saved", saved).Int("total", len(hotels)).Msg("candidates persisted")
}

// hydrate resolves ranked identifiers to full records. The current request's
// fresh candidates always win over persisted snapshots; an identifier found
// in neither is dropped silently.
func (s *RecommendationService) hydrate(ctx context.Context, ids []string, fresh []domain.Hotel) []domain.Hotel {
	freshByID := make(map[string]domain.Hotel, len(fresh))
	for _, h := range fresh {
		if h.HotelID != "" {
			freshByID[h.HotelID] = h
		}
	}

	out := make([]domain.Hotel, 0, len(ids))
	for _, id := range ids {
		if h, ok := freshByID[id]; ok {
			out = append(out, h)
			continue
		}
		if s.store == nil {
			continue
		}
		rec, err := s.store.GetHotel(ctx, id)
		if err != nil {
			log.Debug().Err(err).Str("hotel_id", id).Msg("ranked id not resolvable, dropping")
			continue
		}
		var h domain.Hotel
		if err := json.Unmarshal(rec.Payload, &h); err != nil {
			log.Warn().Err(err).Str("hotel_id", id).Msg("stored payload unreadable, dropping")
			continue
		}
		if h.HotelID == "" {
			h.HotelID = rec.HotelID
		}
		h.RawJSON = rec.Payload
		out = append(out, h)
	}
	return out
}
