package app

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"hbnb_web/internal/domain"
)

// AmenityLoader fetches the amenity set once and shares it. Concurrent
// page renders collapse into a single backend request (singleflight);
// after a successful load the set is served from the cache until the
// TTL lapses. Repeated ids in the source list are dropped, first
// occurrence wins.
type AmenityLoader struct {
	api   domain.APIClient
	cache domain.Cache
	ttl   time.Duration
	sf    singleflight.Group
}

func NewAmenityLoader(api domain.APIClient, cache domain.Cache, ttl time.Duration) *AmenityLoader {
	return &AmenityLoader{api: api, cache: cache, ttl: ttl}
}

func (l *AmenityLoader) Load(ctx context.Context, token string) ([]domain.Amenity, error) {
	var cached []domain.Amenity
	if ok, _ := l.cache.Get(ctx, amenitiesKey, &cached); ok {
		return cached, nil
	}
	v, err, _ := l.sf.Do(amenitiesKey, func() (any, error) {
		raw, err := l.api.ListAmenities(ctx, token)
		if err != nil {
			return nil, err
		}
		ams := dedupeAmenities(mapAmenities(raw))
		_ = l.cache.Set(ctx, amenitiesKey, ams, int(l.ttl.Seconds()))
		return ams, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Amenity), nil
}
