package booking

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"stayfinder/internal/domain"
)

// Provider payloads are loosely typed and field names drift between API
// versions, so every field is resolved through an ordered alias list. The
// full payload is retained verbatim in RawJSON.

var hotelAliases = map[string][]string{
	"id":           {"hotel_id", "id", "hotelId"},
	"name":         {"name", "hotel_name", "title"},
	"address":      {"address", "address.line", "full_address", "location.address"},
	"city":         {"city", "address.city", "locality"},
	"country":      {"country", "address.country", "country_code"},
	"currency":     {"currency", "currency_code", "currencyCode"},
	"description":  {"description", "hotel_description", "summary"},
	"url":          {"url", "deep_link", "link"},
	"lat":          {"latitude", "lat", "location.lat"},
	"lon":          {"longitude", "lon", "lng", "location.lon", "location.lng"},
	"price":        {"price", "min_total_price", "price_per_night", "rate.amount"},
	"rating":       {"rating", "stars", "class"},
	"review_score": {"review_score", "reviewScore", "scores.overall"},
	"review_count": {"review_count", "review_nr", "reviewCount"},
	"amenities":    {"amenities", "facilities"},
	"images":       {"images", "photos", "image_urls"},
}

func mapHotel(p map[string]any) domain.Hotel {
	raw, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).Str("context", "mapHotel").Msg("failed to marshal hotel payload")
	}

	h := domain.Hotel{
		Name:        firstNonEmptyAlias(p, "name"),
		Address:     firstNonEmptyAlias(p, "address"),
		City:        firstNonEmptyAlias(p, "city"),
		Country:     firstNonEmptyAlias(p, "country"),
		Currency:    firstNonEmptyAlias(p, "currency"),
		Description: firstNonEmptyAlias(p, "description"),
		URL:         firstNonEmptyAlias(p, "url"),
		Lat:         getFloatFlexible(p, hotelAliases["lat"]...),
		Lon:         getFloatFlexible(p, hotelAliases["lon"]...),
		Price:       getFloatFlexible(p, hotelAliases["price"]...),
		Rating:      getFloatFlexible(p, hotelAliases["rating"]...),
		ReviewScore: getFloatFlexible(p, hotelAliases["review_score"]...),
		Amenities:   firstSliceStrings(p, hotelAliases["amenities"]...),
		Images:      firstSliceStrings(p, hotelAliases["images"]...),
		RawJSON:     raw,
	}

	// Identifiers arrive as strings or numbers depending on the endpoint.
	for _, path := range hotelAliases["id"] {
		switch v := lookupAny(p, path).(type) {
		case string:
			if v != "" {
				h.HotelID = v
			}
		case float64:
			h.HotelID = strconv.FormatInt(int64(v), 10)
		}
		if h.HotelID != "" {
			break
		}
	}

	if f := getFloatFlexible(p, hotelAliases["review_count"]...); f != nil {
		n := int(*f)
		h.ReviewCount = &n
	}
	return h
}

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, key string) *string {
	for _, p := range hotelAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstSliceStrings: accept []any with either strings or {url/src/name}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if t != "" {
						out = append(out, t)
					}
				case map[string]any:
					if u, ok := t["url"].(string); ok && u != "" {
						out = append(out, u)
						continue
					}
					if u, ok := t["src"].(string); ok && u != "" {
						out = append(out, u)
						continue
					}
					if n, ok := t["name"].(string); ok && n != "" {
						out = append(out, n)
						continue
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}
