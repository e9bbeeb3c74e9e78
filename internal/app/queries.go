package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"hbnb_web/internal/domain"
)

const (
	placesKey    = "places"
	amenitiesKey = "amenities"
)

func placeKey(id string) string   { return "place:" + id }
func reviewsKey(id string) string { return "reviews:" + id }
func confirmKey(tok string) string {
	return "confirm:" + tok
}

// QueryService is the read path: fetch from the backend, map the drifty
// payloads into domain structs, and serve repeat reads from the cache.
type QueryService struct {
	api      domain.APIClient
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(api domain.APIClient, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{api: api, cache: cache, cacheTTL: ttl}
}

// PlacesPage is what the listing page renders: the (possibly filtered)
// cards plus the distinct price points that drive the filter options.
type PlacesPage struct {
	Places []domain.Place
	Prices []float64
}

// ListPlaces returns all places, filtered gateway-side by maxPrice
// (inclusive; zero or negative shows all). The full set is what gets
// cached, so changing the filter never re-fetches.
func (s *QueryService) ListPlaces(ctx context.Context, token string, maxPrice float64) (PlacesPage, error) {
	var all []domain.Place
	if ok, _ := s.cache.Get(ctx, placesKey, &all); !ok {
		raw, err := s.api.ListPlaces(ctx, token)
		if err != nil {
			return PlacesPage{}, err
		}
		all = mapPlaces(raw)
		_ = s.cache.Set(ctx, placesKey, all, int(s.cacheTTL.Seconds()))
	}
	return PlacesPage{
		Places: FilterByMaxPrice(all, maxPrice),
		Prices: priceOptions(all),
	}, nil
}

func (s *QueryService) GetPlace(ctx context.Context, token, id string) (domain.Place, error) {
	key := placeKey(id)
	var p domain.Place
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}
	raw, err := s.api.GetPlace(ctx, token, id)
	if err != nil {
		return domain.Place{}, err
	}
	p = mapPlace(raw)
	_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	return p, nil
}

func (s *QueryService) ListReviews(ctx context.Context, token, placeID string) ([]domain.Review, error) {
	key := reviewsKey(placeID)
	var out []domain.Review
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	raw, err := s.api.ListReviews(ctx, token, placeID)
	if err != nil {
		return nil, err
	}
	rs := mapReviews(placeID, raw)

	// copy before caching so callers can't mutate the cached value
	cp := make([]domain.Review, len(rs))
	copy(cp, rs)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return rs, nil
}

// MyPlaces narrows the listing to the session subject and computes the
// little stats block the my-places page shows. Ownership filtering here
// is presentation only; the backend re-checks it on every mutation.
func (s *QueryService) MyPlaces(ctx context.Context, token, ownerID string) ([]domain.Place, domain.PlaceStats, error) {
	if ownerID == "" {
		return nil, domain.PlaceStats{}, fmt.Errorf("owner id is required")
	}
	page, err := s.ListPlaces(ctx, token, 0)
	if err != nil {
		return nil, domain.PlaceStats{}, err
	}
	var mine []domain.Place
	for _, p := range page.Places {
		if p.OwnerID == ownerID {
			mine = append(mine, p)
		}
	}
	return mine, placeStats(mine), nil
}

// FilterByMaxPrice keeps places priced at or under max. max <= 0 means
// no filter.
func FilterByMaxPrice(in []domain.Place, max float64) []domain.Place {
	if max <= 0 {
		return in
	}
	out := make([]domain.Place, 0, len(in))
	for _, p := range in {
		if p.Price <= max {
			out = append(out, p)
		}
	}
	return out
}

func priceOptions(in []domain.Place) []float64 {
	seen := make(map[float64]struct{}, len(in))
	var out []float64
	for _, p := range in {
		if _, dup := seen[p.Price]; dup {
			continue
		}
		seen[p.Price] = struct{}{}
		out = append(out, p.Price)
	}
	sort.Float64s(out)
	return out
}

func placeStats(in []domain.Place) domain.PlaceStats {
	st := domain.PlaceStats{Total: len(in)}
	if st.Total == 0 {
		return st
	}
	var sum float64
	for _, p := range in {
		sum += p.Price
		st.TotalReviews += len(p.Reviews)
	}
	st.AveragePrice = sum / float64(st.Total)
	return st
}
