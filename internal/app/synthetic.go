package app

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"stayfinder/internal/domain"
)

// Synthetic candidate generation. Deterministic and idempotent: identical
// (location, budget bounds, preferences) tuples yield the same identifiers
// and coordinates, while distinct tuples get distinct fingerprint prefixes.
// Nothing here may read the clock or a random source.

// queryFingerprint is the short hash prefixed to every generated identifier
// so repeated identical queries stay cache-coherent.
func queryFingerprint(p domain.SearchParams) string {
	key := fmt.Sprintf("%s|%s|%s|%s",
		strOrEmpty(p.Location), floatKey(p.BudgetMin), floatKey(p.BudgetMax),
		strings.Join(p.Preferences, ","))
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:8]
}

func floatKey(f *float64) string {
	if f == nil {
		return "nil"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// cityCoords is scanned in order with case-insensitive substring matching;
// unknown locations fall back to the Paris reference point.
var cityCoords = []struct {
	key      string
	lat, lng float64
}{
	{"paris", 48.8566, 2.3522},
	{"rome", 41.9028, 12.4964},
	{"london", 51.5074, -0.1278},
	{"barcelona", 41.3851, 2.1734},
	{"amsterdam", 52.3676, 4.9041},
	{"berlin", 52.5200, 13.4050},
	{"vienna", 48.2082, 16.3738},
	{"prague", 50.0755, 14.4378},
	{"madrid", 40.4168, -3.7038},
	{"milan", 45.4642, 9.1900},
	{"venice", 45.4408, 12.3155},
	{"florence", 43.7696, 11.2558},
	{"italy", 41.8719, 12.5674},
	{"france", 46.2276, 2.2137},
	{"spain", 40.4637, -3.7492},
}

func locationCoords(location string) (float64, float64) {
	low := strings.ToLower(location)
	for _, c := range cityCoords {
		if strings.Contains(low, c.key) {
			return c.lat, c.lng
		}
	}
	return 48.8566, 2.3522
}

var countryHints = []struct {
	country string
	cities  []string
}{
	{"France", []string{"paris", "lyon", "nice", "marseille", "france"}},
	{"Italy", []string{"rome", "milan", "venice", "florence", "italy", "naples"}},
	{"United Kingdom", []string{"london", "manchester", "edinburgh", "uk", "england"}},
	{"Spain", []string{"barcelona", "madrid", "seville", "spain"}},
	{"Germany", []string{"berlin", "munich", "frankfurt", "germany"}},
	{"Netherlands", []string{"amsterdam", "netherlands", "holland"}},
	{"Austria", []string{"vienna", "austria"}},
	{"Czech Republic", []string{"prague", "czech"}},
}

func countryForLocation(location string) string {
	low := strings.ToLower(location)
	for _, h := range countryHints {
		for _, c := range h.cities {
			if strings.Contains(low, c) {
				return h.country
			}
		}
	}
	return "France"
}

// coordOffset derives a small stable offset (±0.01 degrees) from the
// location name and the archetype's catalog index.
func coordOffset(location string, index int, multiplier int) float64 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(location)))
	locHash := int(h.Sum32() % 10000)
	return float64((locHash+index*multiplier)%200-100) / 10000.0
}

// archetype is one entry of the fixed ten-hotel catalog.
type archetype struct {
	slug        string
	name        string // fmt with location
	street      string
	price       float64
	rating      float64
	reviewScore float64
	reviewCount int
	amenities   []string
	description string // fmt with location
	images      []string
}

var hotelCatalog = []archetype{
	{
		slug: "luxury", name: "Grand Palace Hotel %s", street: "1 Champs-Élysées",
		price: 350.0, rating: 4.9, reviewScore: 9.5, reviewCount: 2340,
		amenities:   []string{"WiFi", "Pool", "Spa", "Fitness Center", "Restaurant", "Bar", "Room Service", "Concierge", "Valet Parking", "Business Center"},
		description: "Luxurious 5-star hotel in the heart of %s. Features elegant rooms, world-class spa, fine dining, and exceptional service. Perfect for business travelers and romantic getaways.",
		images: []string{
			"https://images.unsplash.com/photo-1566073771259-6a8506099945?w=800&h=600&fit=crop",
			"https://images.unsplash.com/photo-1551882547-ff40c63fe5fa?w=800&h=600&fit=crop",
		},
	},
	{
		slug: "resort", name: "Seaside Luxury Resort %s", street: "Beach Boulevard",
		price: 280.0, rating: 4.7, reviewScore: 9.1, reviewCount: 1890,
		amenities:   []string{"WiFi", "Pool", "Spa", "Beach Access", "Restaurant", "Bar", "Water Sports", "Kids Club", "Beach Bar", "Tennis Court"},
		description: "Stunning beachfront resort in %s with direct beach access. Features infinity pool, spa, multiple restaurants, and water sports. Ideal for families and couples seeking relaxation.",
		images: []string{
			"https://images.unsplash.com/photo-1571003123894-1f0594d2b5d9?w=800&h=600&fit=crop",
			"https://images.unsplash.com/photo-1582719478250-c89cae4dc85b?w=800&h=600&fit=crop",
		},
	},
	{
		slug: "boutique", name: "Romantic Boutique Hotel %s", street: "Rue de la Romance",
		price: 180.0, rating: 4.6, reviewScore: 8.9, reviewCount: 1450,
		amenities:   []string{"WiFi", "Spa", "Restaurant", "Bar", "Romantic Packages", "Couples Massage", "Rooftop Terrace", "Wine Bar"},
		description: "Charming boutique hotel in %s perfect for romantic getaways. Intimate atmosphere, beautifully designed rooms, spa services, and fine dining. Highly rated by couples.",
		images: []string{
			"https://images.unsplash.com/photo-1590490360182-c33d57733427?w=800&h=600&fit=crop",
			"https://images.unsplash.com/photo-1564501049412-61c2a3083791?w=800&h=600&fit=crop",
		},
	},
	{
		slug: "business", name: "Business Center Hotel %s", street: "Financial District",
		price: 220.0, rating: 4.4, reviewScore: 8.6, reviewCount: 2100,
		amenities:   []string{"WiFi", "Business Center", "Meeting Rooms", "Fitness Center", "Restaurant", "Bar", "Airport Shuttle", "Concierge", "Laundry Service"},
		description: "Modern business hotel in %s's financial district. Well-equipped meeting facilities, high-speed WiFi, fitness center, and convenient location for corporate travelers.",
		images: []string{
			"https://images.unsplash.com/photo-1566073771259-6a8506099945?w=800&h=600&fit=crop",
			"https://images.unsplash.com/photo-1590490360182-c33d57733427?w=800&h=600&fit=crop",
		},
	},
	{
		slug: "family", name: "Family Resort %s", street: "Family Street",
		price: 160.0, rating: 4.5, reviewScore: 8.7, reviewCount: 3200,
		amenities:   []string{"WiFi", "Pool", "Kids Club", "Playground", "Family Rooms", "Restaurant", "Bar", "Entertainment", "Game Room", "Babysitting"},
		description: "Family-friendly resort in %s with extensive facilities for children. Large pool, kids club, playground, family rooms, and entertainment. Perfect for families with children.",
		images: []string{
			"https://images.unsplash.com/photo-1571003123894-1f0594d2b5d9?w=800&h=600&fit=crop",
			"https://images.unsplash.com/photo-1564501049412-61c2a3083791?w=800&h=600&fit=crop",
		},
	},
	{
		slug: "mid", name: "Comfort Inn %s", street: "Main Avenue",
		price: 120.0, rating: 4.2, reviewScore: 8.3, reviewCount: 1850,
		amenities:   []string{"WiFi", "Pool", "Restaurant", "Bar", "Parking", "Fitness Center"},
		description: "Comfortable mid-range hotel in %s with good value. Clean rooms, pool, restaurant, and convenient location. Great for travelers seeking comfort without luxury prices.",
		images: []string{
			"https://images.unsplash.com/photo-1590490360182-c33d57733427?w=800&h=600&fit=crop",
			"https://images.unsplash.com/photo-1566073771259-6a8506099945?w=800&h=600&fit=crop",
		},
	},
	{
		slug: "spa", name: "Wellness Spa Hotel %s", street: "Relaxation Road",
		price: 200.0, rating: 4.6, reviewScore: 8.8, reviewCount: 1650,
		amenities:   []string{"WiFi", "Spa", "Wellness Center", "Massage", "Sauna", "Steam Room", "Yoga Classes", "Restaurant", "Bar", "Pool"},
		description: "Dedicated wellness and spa hotel in %s. Extensive spa facilities, massage services, sauna, steam room, yoga classes, and healthy dining options. Perfect for relaxation and rejuvenation.",
		images: []string{
			"https://images.unsplash.com/photo-1571896349842-33c89424de2d?w=800&h=600&fit=crop",
			"https://images.unsplash.com/photo-1582719478250-c89cae4dc85b?w=800&h=600&fit=crop",
		},
	},
	{
		slug: "budget", name: "Budget Inn %s", street: "Economy Street",
		price: 65.0, rating: 3.8, reviewScore: 7.6, reviewCount: 2800,
		amenities:   []string{"WiFi", "Parking", "24-Hour Reception"},
		description: "Affordable budget accommodation in %s. Basic but clean rooms, free WiFi, parking available. Great value for money-conscious travelers.",
		images: []string{
			"https://images.unsplash.com/photo-1590490360182-c33d57733427?w=800&h=600&fit=crop",
			"https://images.unsplash.com/photo-1564501049412-61c2a3083791?w=800&h=600&fit=crop",
		},
	},
	{
		slug: "historic", name: "Historic Grand Hotel %s", street: "Historic Square",
		price: 240.0, rating: 4.7, reviewScore: 9.0, reviewCount: 1950,
		amenities:   []string{"WiFi", "Historic Building", "Restaurant", "Bar", "Concierge", "Room Service", "Fitness Center"},
		description: "Beautifully restored historic hotel in the center of %s. Combines classic architecture with modern amenities. Elegant rooms, fine dining, and rich history.",
		images: []string{
			"https://images.unsplash.com/photo-1566073771259-6a8506099945?w=800&h=600&fit=crop",
			"https://images.unsplash.com/photo-1551882547-ff40c63fe5fa?w=800&h=600&fit=crop",
		},
	},
	{
		slug: "eco", name: "Eco-Friendly Hotel %s", street: "Green Boulevard",
		price: 140.0, rating: 4.4, reviewScore: 8.5, reviewCount: 1200,
		amenities:   []string{"WiFi", "Eco-Friendly", "Organic Restaurant", "Bike Rental", "Solar Power", "Recycling", "Garden"},
		description: "Environmentally conscious hotel in %s. Sustainable practices, organic restaurant, bike rental, solar power. Perfect for eco-conscious travelers.",
		images: []string{
			"https://images.unsplash.com/photo-1564501049412-61c2a3083791?w=800&h=600&fit=crop",
			"https://images.unsplash.com/photo-1590490360182-c33d57733427?w=800&h=600&fit=crop",
		},
	},
}

const maxSyntheticResults = 12

// generateSynthetic builds the full catalog for the query's location, then
// applies the budget filter and preference bias.
func generateSynthetic(p domain.SearchParams) []domain.Hotel {
	location := "Paris"
	if p.Location != nil && *p.Location != "" {
		location = *p.Location
	}
	fp := queryFingerprint(p)
	baseLat, baseLng := locationCoords(location)
	country := countryForLocation(location)

	hotels := make([]domain.Hotel, 0, len(hotelCatalog))
	for i, a := range hotelCatalog {
		lat := baseLat + coordOffset(location, i, 100)
		lng := baseLng + coordOffset(location, i, 200)
		id := fmt.Sprintf("%s_%s_1", fp, a.slug)
		h := domain.Hotel{
			HotelID:     id,
			Name:        strPtr(fmt.Sprintf(a.name, location)),
			Address:     strPtr(fmt.Sprintf("%s, %s", a.street, location)),
			City:        strPtr(location),
			Country:     strPtr(country),
			Lat:         f64Ptr(lat),
			Lon:         f64Ptr(lng),
			Price:       f64Ptr(a.price),
			Currency:    strPtr("EUR"),
			Rating:      f64Ptr(a.rating),
			ReviewScore: f64Ptr(a.reviewScore),
			ReviewCount: intPtr(a.reviewCount),
			Amenities:   append([]string(nil), a.amenities...),
			Description: strPtr(fmt.Sprintf(a.description, location)),
			Images:      append([]string(nil), a.images...),
			URL:         strPtr("https://booking.com/hotel/" + id),
		}
		if raw, err := json.Marshal(h); err == nil {
			h.RawJSON = raw
		}
		hotels = append(hotels, h)
	}

	hotels = filterByBudget(hotels, p)
	hotels = biasByPreferences(hotels, p.Preferences)
	if len(hotels) > maxSyntheticResults {
		hotels = hotels[:maxSyntheticResults]
	}
	return hotels
}

// filterByBudget drops candidates priced outside [budget_min, budget_max];
// a missing bound is unbounded on that side and the bounds are inclusive.
func filterByBudget(hotels []domain.Hotel, p domain.SearchParams) []domain.Hotel {
	if p.BudgetMin == nil && p.BudgetMax == nil {
		return hotels
	}
	out := hotels[:0]
	for _, h := range hotels {
		price := 0.0
		if h.Price != nil {
			price = *h.Price
		}
		if p.BudgetMax != nil && price > *p.BudgetMax {
			continue
		}
		if p.BudgetMin != nil && price < *p.BudgetMin {
			continue
		}
		out = append(out, h)
	}
	return out
}

// biasByPreferences scores candidates by fixed per-tag bonuses and keeps only
// the ones that matched, ordered by score with ties in catalog order. If
// nothing scored, the unscored list is returned as-is so a preference
// mismatch never empties the result.
func biasByPreferences(hotels []domain.Hotel, preferences []string) []domain.Hotel {
	if len(preferences) == 0 || len(hotels) == 0 {
		return hotels
	}
	prefs := make([]string, len(preferences))
	for i, p := range preferences {
		prefs[i] = strings.ToLower(p)
	}
	anyPref := func(subs ...string) bool {
		for _, p := range prefs {
			for _, s := range subs {
				if strings.Contains(p, s) {
					return true
				}
			}
		}
		return false
	}

	scores := make([]int, len(hotels))
	scored := false
	for i, h := range hotels {
		amen := strings.ToLower(strings.Join(h.Amenities, " "))
		nameDesc := strings.ToLower(strOrEmpty(h.Name) + " " + strOrEmpty(h.Description))
		rating := 0.0
		if h.Rating != nil {
			rating = *h.Rating
		}
		price := 0.0
		if h.Price != nil {
			price = *h.Price
		}

		s := 0
		if anyPref("luxury", "premium") && (rating >= 4.5 || strings.Contains(nameDesc, "luxury")) {
			s += 10
		}
		if anyPref("budget", "cheap", "affordable") && price <= 100 {
			s += 10
		}
		if anyPref("romantic", "couple") &&
			(strings.Contains(nameDesc, "romantic") || strings.Contains(nameDesc, "boutique") || strings.Contains(amen, "spa")) {
			s += 10
		}
		if anyPref("family", "kids") &&
			(strings.Contains(nameDesc, "family") || strings.Contains(amen, "kids")) {
			s += 10
		}
		if anyPref("business", "corporate") &&
			(strings.Contains(nameDesc, "business") || strings.Contains(amen, "business")) {
			s += 10
		}
		if anyPref("beach", "seaside") &&
			(strings.Contains(nameDesc, "beach") || strings.Contains(amen, "beach")) {
			s += 10
		}
		if anyPref("pool") && strings.Contains(amen, "pool") {
			s += 10
		}
		if anyPref("spa", "wellness") &&
			(strings.Contains(amen, "spa") || strings.Contains(amen, "wellness")) {
			s += 10
		}
		scores[i] = s
		if s > 0 {
			scored = true
		}
	}
	if !scored {
		return hotels
	}

	idx := make([]int, len(hotels))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })

	out := make([]domain.Hotel, 0, len(hotels))
	for _, j := range idx {
		if scores[j] > 0 {
			out = append(out, hotels[j])
		}
	}
	return out
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func intPtr(n int) *int         { return &n }
