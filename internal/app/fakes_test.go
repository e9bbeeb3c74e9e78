package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"hbnb_web/internal/domain"
)

// fakeCache mirrors the redis adapter's semantics: values round-trip
// through JSON, so cached data can't alias the caller's memory.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, _ := json.Marshal(v)
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.store[key]
	return ok
}

// fakeAPI is a scriptable domain.APIClient with call counters.
type fakeAPI struct {
	places    []map[string]any
	reviews   []map[string]any
	amenities []map[string]any

	listCalls    int32
	amenityCalls int32
	deleteCalls  int32
	reviewCalls  int32
	registerErr  error
	loginCalls   int32
	loginToken   string

	amenityHook func() // runs inside ListAmenities, for concurrency tests
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (string, error) {
	atomic.AddInt32(&f.loginCalls, 1)
	return f.loginToken, nil
}

func (f *fakeAPI) Register(ctx context.Context, in domain.RegisterInput) error {
	return f.registerErr
}

func (f *fakeAPI) ListPlaces(ctx context.Context, token string) ([]map[string]any, error) {
	atomic.AddInt32(&f.listCalls, 1)
	return f.places, nil
}

func (f *fakeAPI) GetPlace(ctx context.Context, token, id string) (map[string]any, error) {
	for _, p := range f.places {
		if p["id"] == id {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAPI) CreatePlace(ctx context.Context, token string, in domain.PlaceInput) (map[string]any, error) {
	return map[string]any{"id": "created-1", "title": in.Title, "price": in.Price}, nil
}

func (f *fakeAPI) UpdatePlace(ctx context.Context, token, id string, in domain.PlaceInput) (map[string]any, error) {
	return map[string]any{"id": id, "title": in.Title, "price": in.Price}, nil
}

func (f *fakeAPI) DeletePlace(ctx context.Context, token, id string) error {
	atomic.AddInt32(&f.deleteCalls, 1)
	return nil
}

func (f *fakeAPI) ListReviews(ctx context.Context, token, placeID string) ([]map[string]any, error) {
	return f.reviews, nil
}

func (f *fakeAPI) AddReview(ctx context.Context, token, placeID, text string, rating int) error {
	atomic.AddInt32(&f.reviewCalls, 1)
	return nil
}

func (f *fakeAPI) ListAmenities(ctx context.Context, token string) ([]map[string]any, error) {
	atomic.AddInt32(&f.amenityCalls, 1)
	if f.amenityHook != nil {
		f.amenityHook()
	}
	return f.amenities, nil
}
