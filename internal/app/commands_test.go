package app_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"hbnb_web/internal/app"
	"hbnb_web/internal/domain"
)

func TestDelete_CancelIssuesNoCall(t *testing.T) {
	api := &fakeAPI{}
	cache := &fakeCache{}
	c := app.NewCommandService(api, cache, time.Minute)

	tok, err := c.BeginDelete(context.Background(), "p1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	c.CancelDelete(context.Background(), tok)

	if n := atomic.LoadInt32(&api.deleteCalls); n != 0 {
		t.Fatalf("cancel must not call the backend, got %d calls", n)
	}
	// cancelled token is dead
	if err := c.ConfirmDelete(context.Background(), "sess", tok, "p1"); !errors.Is(err, domain.ErrConfirmExpired) {
		t.Fatalf("expected ErrConfirmExpired, got %v", err)
	}
}

func TestDelete_ConfirmIssuesExactlyOneCall(t *testing.T) {
	api := &fakeAPI{}
	cache := &fakeCache{}
	c := app.NewCommandService(api, cache, time.Minute)

	// stale listing in cache, should be evicted by the delete
	_ = cache.Set(context.Background(), "places", []domain.Place{{ID: "p1"}}, 60)

	tok, _ := c.BeginDelete(context.Background(), "p1")
	if err := c.ConfirmDelete(context.Background(), "sess", tok, "p1"); err != nil {
		t.Fatalf("err: %v", err)
	}
	if n := atomic.LoadInt32(&api.deleteCalls); n != 1 {
		t.Fatalf("expected exactly 1 delete call, got %d", n)
	}
	if cache.has("places") {
		t.Fatalf("listing cache should be invalidated after delete")
	}

	// token is single-use
	if err := c.ConfirmDelete(context.Background(), "sess", tok, "p1"); !errors.Is(err, domain.ErrConfirmExpired) {
		t.Fatalf("expected ErrConfirmExpired on reuse, got %v", err)
	}
	if n := atomic.LoadInt32(&api.deleteCalls); n != 1 {
		t.Fatalf("reused token must not call the backend again, got %d", n)
	}
}

func TestDelete_TokenBoundToPlace(t *testing.T) {
	api := &fakeAPI{}
	c := app.NewCommandService(api, &fakeCache{}, time.Minute)

	tok, _ := c.BeginDelete(context.Background(), "p1")
	if err := c.ConfirmDelete(context.Background(), "sess", tok, "p2"); !errors.Is(err, domain.ErrConfirmExpired) {
		t.Fatalf("expected ErrConfirmExpired for mismatched place, got %v", err)
	}
	if n := atomic.LoadInt32(&api.deleteCalls); n != 0 {
		t.Fatalf("mismatched confirm must not delete, got %d calls", n)
	}
}

func TestAddReview_InvalidatesCaches(t *testing.T) {
	api := &fakeAPI{}
	cache := &fakeCache{}
	c := app.NewCommandService(api, cache, time.Minute)

	_ = cache.Set(context.Background(), "reviews:p1", []domain.Review{{Text: "old"}}, 60)
	_ = cache.Set(context.Background(), "place:p1", domain.Place{ID: "p1"}, 60)
	_ = cache.Set(context.Background(), "places", []domain.Place{{ID: "p1"}}, 60)

	if err := c.AddReview(context.Background(), "tok", "p1", "nice", 5); err != nil {
		t.Fatalf("err: %v", err)
	}
	if cache.has("reviews:p1") || cache.has("place:p1") || cache.has("places") {
		t.Fatalf("stale caches survived the mutation")
	}
}

func TestCreatePlace_InvalidatesListing(t *testing.T) {
	api := &fakeAPI{}
	cache := &fakeCache{}
	c := app.NewCommandService(api, cache, time.Minute)
	_ = cache.Set(context.Background(), "places", []domain.Place{}, 60)

	p, err := c.CreatePlace(context.Background(), "tok", domain.PlaceInput{Title: "Lake House", Price: 120})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p.ID != "created-1" || p.Name != "Lake House" {
		t.Fatalf("unexpected place: %+v", p)
	}
	if cache.has("places") {
		t.Fatalf("listing cache should be invalidated after create")
	}
}

func TestRegisterAndLogin_NoLoginWhenRegisterFails(t *testing.T) {
	api := &fakeAPI{registerErr: errors.New("email taken"), loginToken: "never"}
	c := app.NewCommandService(api, &fakeCache{}, time.Minute)

	_, err := c.RegisterAndLogin(context.Background(), domain.RegisterInput{Email: "a@b.c", Password: "pw"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if n := atomic.LoadInt32(&api.loginCalls); n != 0 {
		t.Fatalf("login must not run when register fails, got %d calls", n)
	}
}

func TestRegisterAndLogin_ChainsLogin(t *testing.T) {
	api := &fakeAPI{loginToken: "fresh-token"}
	c := app.NewCommandService(api, &fakeCache{}, time.Minute)

	tok, err := c.RegisterAndLogin(context.Background(), domain.RegisterInput{Email: "a@b.c", Password: "pw"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if tok != "fresh-token" {
		t.Fatalf("token = %q", tok)
	}
}
