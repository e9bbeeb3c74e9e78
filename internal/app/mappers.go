package app

import (
	"strconv"
	"strings"

	"hbnb_web/internal/domain"
)

/********** alias registries (single source of truth) **********/

// The backend's JSON drifts between deployments (title vs name,
// price vs price_by_night, user_name vs author). Each canonical field
// lists its accepted spellings, first match wins.

var placeAliases = map[string][]string{
	"id":          {"id", "place_id"},
	"name":        {"title", "name"},
	"description": {"description"},
	"price":       {"price", "price_by_night", "price_per_night"},
	"latitude":    {"latitude", "lat"},
	"longitude":   {"longitude", "lon", "lng"},
	"owner":       {"owner_id", "owner.id", "user_id"},
	"host":        {"host_name", "owner.first_name", "owner.name"},
}

var reviewAliases = map[string][]string{
	"id":     {"id", "review_id"},
	"text":   {"text", "comment", "content"},
	"author": {"user_name", "author", "user.first_name", "user.username"},
	"rating": {"rating", "rate"},
}

var amenityAliases = map[string][]string{
	"id":   {"id", "amenity_id"},
	"name": {"name", "label"},
}

/********** tiny helpers **********/

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

// aliasStr returns the first non-empty string for a named alias set.
// Numeric ids come back stringified since domain ids are strings.
func aliasStr(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// aliasFloat: number from the alias paths (float64/int/string like "8,0").
func aliasFloat(m map[string]any, aliases map[string][]string, key string) float64 {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// aliasInt tolerates float64, int and quoted numbers. One page variant
// used to send review ratings as strings, so reads stay tolerant even
// though the gateway itself always writes integers.
func aliasInt(m map[string]any, aliases map[string][]string, key string) int {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return int(v)
		case int:
			return v
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return 0
}

/********** payload -> domain **********/

func mapPlace(m map[string]any) domain.Place {
	p := domain.Place{
		ID:          aliasStr(m, placeAliases, "id"),
		Name:        aliasStr(m, placeAliases, "name"),
		Description: aliasStr(m, placeAliases, "description"),
		Price:       aliasFloat(m, placeAliases, "price"),
		Latitude:    aliasFloat(m, placeAliases, "latitude"),
		Longitude:   aliasFloat(m, placeAliases, "longitude"),
		OwnerID:     aliasStr(m, placeAliases, "owner"),
		HostName:    aliasStr(m, placeAliases, "host"),
	}
	if raw, ok := m["amenities"].([]any); ok {
		for _, a := range raw {
			switch v := a.(type) {
			case map[string]any:
				p.Amenities = append(p.Amenities, mapAmenity(v))
			case string:
				// bare id form
				p.Amenities = append(p.Amenities, domain.Amenity{ID: v})
			}
		}
	}
	if raw, ok := m["reviews"].([]any); ok {
		for _, r := range raw {
			if v, ok := r.(map[string]any); ok {
				p.Reviews = append(p.Reviews, mapReview(p.ID, v))
			}
		}
	}
	return p
}

func mapPlaces(raw []map[string]any) []domain.Place {
	out := make([]domain.Place, 0, len(raw))
	for _, m := range raw {
		out = append(out, mapPlace(m))
	}
	return out
}

func mapReview(placeID string, m map[string]any) domain.Review {
	return domain.Review{
		ID:      aliasStr(m, reviewAliases, "id"),
		PlaceID: placeID,
		Text:    aliasStr(m, reviewAliases, "text"),
		Rating:  aliasInt(m, reviewAliases, "rating"),
		Author:  aliasStr(m, reviewAliases, "author"),
	}
}

func mapReviews(placeID string, raw []map[string]any) []domain.Review {
	out := make([]domain.Review, 0, len(raw))
	for _, m := range raw {
		out = append(out, mapReview(placeID, m))
	}
	return out
}

func mapAmenity(m map[string]any) domain.Amenity {
	return domain.Amenity{
		ID:   aliasStr(m, amenityAliases, "id"),
		Name: aliasStr(m, amenityAliases, "name"),
	}
}

func mapAmenities(raw []map[string]any) []domain.Amenity {
	out := make([]domain.Amenity, 0, len(raw))
	for _, m := range raw {
		out = append(out, mapAmenity(m))
	}
	return out
}

// dedupeAmenities keeps the first occurrence of each id, preserving
// source order. The backend's amenity list is known to contain repeats.
func dedupeAmenities(in []domain.Amenity) []domain.Amenity {
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.Amenity, 0, len(in))
	for _, a := range in {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}
