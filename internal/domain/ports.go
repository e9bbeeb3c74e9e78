package domain

import "context"

// APIClient is the outbound contract with the HBnB REST backend.
// Raw payloads come back as maps because the backend drifts between
// field spellings (name/title, price_by_night/price); the app layer
// owns the tolerant mapping into domain structs.
//
// token may be empty on read paths; mutating calls require it. The
// backend is the enforcement point for every privileged operation —
// anything the gateway derives from the token is a UI hint only.
type APIClient interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, in RegisterInput) error

	ListPlaces(ctx context.Context, token string) ([]map[string]any, error)
	GetPlace(ctx context.Context, token, id string) (map[string]any, error)
	CreatePlace(ctx context.Context, token string, in PlaceInput) (map[string]any, error)
	UpdatePlace(ctx context.Context, token, id string, in PlaceInput) (map[string]any, error)
	DeletePlace(ctx context.Context, token, id string) error

	ListReviews(ctx context.Context, token, placeID string) ([]map[string]any, error)
	AddReview(ctx context.Context, token, placeID, text string, rating int) error

	ListAmenities(ctx context.Context, token string) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
