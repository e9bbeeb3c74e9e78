package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hbnb_web/internal/domain"
)

// CommandService is the write path: every mutation goes straight to the
// backend (the enforcement point), then invalidates whatever cached
// reads it made stale so the next render re-fetches.
type CommandService struct {
	api        domain.APIClient
	cache      domain.Cache
	confirmTTL time.Duration
}

func NewCommandService(api domain.APIClient, cache domain.Cache, confirmTTL time.Duration) *CommandService {
	if confirmTTL <= 0 {
		confirmTTL = 5 * time.Minute
	}
	return &CommandService{api: api, cache: cache, confirmTTL: confirmTTL}
}

// ErrAutoLoginFailed means registration landed but the follow-up login
// did not; the account exists and the user can sign in manually.
var ErrAutoLoginFailed = errors.New("auto-login after register failed")

func (s *CommandService) Login(ctx context.Context, email, password string) (string, error) {
	return s.api.Login(ctx, email, password)
}

// RegisterAndLogin creates the account, then chains a login with the
// same credentials. Sequential on purpose: the login needs the
// registration to have landed.
func (s *CommandService) RegisterAndLogin(ctx context.Context, in domain.RegisterInput) (string, error) {
	if err := s.api.Register(ctx, in); err != nil {
		return "", err
	}
	tok, err := s.api.Login(ctx, in.Email, in.Password)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAutoLoginFailed, err)
	}
	return tok, nil
}

func (s *CommandService) CreatePlace(ctx context.Context, token string, in domain.PlaceInput) (domain.Place, error) {
	raw, err := s.api.CreatePlace(ctx, token, in)
	if err != nil {
		return domain.Place{}, err
	}
	_ = s.cache.Del(ctx, placesKey)
	return mapPlace(raw), nil
}

func (s *CommandService) UpdatePlace(ctx context.Context, token, id string, in domain.PlaceInput) (domain.Place, error) {
	raw, err := s.api.UpdatePlace(ctx, token, id, in)
	if err != nil {
		return domain.Place{}, err
	}
	s.invalidatePlace(ctx, id)
	return mapPlace(raw), nil
}

func (s *CommandService) AddReview(ctx context.Context, token, placeID, text string, rating int) error {
	if err := s.api.AddReview(ctx, token, placeID, text, rating); err != nil {
		return err
	}
	// the review list and the embedded review count both changed
	_ = s.cache.Del(ctx, reviewsKey(placeID))
	s.invalidatePlace(ctx, placeID)
	return nil
}

// ---- two-phase delete ----
//
// Deletion is confirm-then-execute: BeginDelete mints a short-lived
// token bound to the target place; only a ConfirmDelete presenting that
// token issues the network call. Cancel (or letting the token expire)
// never touches the backend. The pending state lives in the cache keyed
// by the token, not in a mutable field on the service.

func (s *CommandService) BeginDelete(ctx context.Context, placeID string) (string, error) {
	tok := uuid.NewString()
	if err := s.cache.Set(ctx, confirmKey(tok), placeID, int(s.confirmTTL.Seconds())); err != nil {
		return "", err
	}
	return tok, nil
}

func (s *CommandService) ConfirmDelete(ctx context.Context, token, confirmToken, placeID string) error {
	var bound string
	ok, err := s.cache.Get(ctx, confirmKey(confirmToken), &bound)
	if err != nil {
		log.Warn().Err(err).Msg("confirm token lookup failed")
	}
	if !ok || bound != placeID {
		return domain.ErrConfirmExpired
	}
	_ = s.cache.Del(ctx, confirmKey(confirmToken))

	if err := s.api.DeletePlace(ctx, token, placeID); err != nil {
		return err
	}
	s.invalidatePlace(ctx, placeID)
	_ = s.cache.Del(ctx, reviewsKey(placeID))
	return nil
}

func (s *CommandService) CancelDelete(ctx context.Context, confirmToken string) {
	_ = s.cache.Del(ctx, confirmKey(confirmToken))
}

func (s *CommandService) invalidatePlace(ctx context.Context, id string) {
	_ = s.cache.Del(ctx, placesKey)
	_ = s.cache.Del(ctx, placeKey(id))
}
