package hbnbapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hbnb_web/internal/adapters/hbnbapi"
	"hbnb_web/internal/domain"
)

func TestListPlaces_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode([]map[string]any{{"id": "p1", "title": "Loft"}})
		}
	}))
	defer ts.Close()

	cl, err := hbnbapi.New(ts.URL, 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.ListPlaces(ctx, "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0]["id"] != "p1" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestGetPlace_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, _ := hbnbapi.New(ts.URL, 100)
	_, err := cl.GetPlace(context.Background(), "", "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPlaces_NoAuthHeaderWhenAnonymous(t *testing.T) {
	var auth atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer ts.Close()

	cl, _ := hbnbapi.New(ts.URL, 100)
	if _, err := cl.ListPlaces(context.Background(), ""); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := auth.Load().(string); got != "" {
		t.Fatalf("anonymous list must not carry auth header, got %q", got)
	}
}

func TestCreatePlace_SendsBearerAndEmptyAmenities(t *testing.T) {
	type seen struct {
		auth   string
		method string
		body   map[string]any
	}
	ch := make(chan seen, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var m map[string]any
		_ = json.Unmarshal(b, &m)
		ch <- seen{auth: r.Header.Get("Authorization"), method: r.Method, body: m}
		w.WriteHeader(201)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "new-1", "title": "Lake House"})
	}))
	defer ts.Close()

	cl, _ := hbnbapi.New(ts.URL, 100)
	out, err := cl.CreatePlace(context.Background(), "tok-1", domain.PlaceInput{
		Title: "Lake House", Price: 120, Latitude: 45.5, Longitude: -73.6,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out["id"] != "new-1" {
		t.Fatalf("unexpected response: %+v", out)
	}

	s := <-ch
	if s.auth != "Bearer tok-1" {
		t.Fatalf("auth = %q", s.auth)
	}
	if s.method != http.MethodPost {
		t.Fatalf("method = %s", s.method)
	}
	am, ok := s.body["amenities"].([]any)
	if !ok || len(am) != 0 {
		t.Fatalf("amenities must be an empty array, got %v", s.body["amenities"])
	}
	if s.body["title"] != "Lake House" || s.body["price"] != 120.0 {
		t.Fatalf("unexpected body: %+v", s.body)
	}
}

func TestAddReview_RatingIsInteger(t *testing.T) {
	ch := make(chan string, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		ch <- string(b)
		w.WriteHeader(201)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "r1"})
	}))
	defer ts.Close()

	cl, _ := hbnbapi.New(ts.URL, 100)
	if err := cl.AddReview(context.Background(), "tok", "p1", "great stay", 4); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(<-ch), &m); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if string(m["rating"]) != "4" {
		t.Fatalf("rating on the wire = %s, want bare 4", m["rating"])
	}
}

func TestCreatePlace_ValidationErrorSurfacesMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "price must be positive"})
	}))
	defer ts.Close()

	cl, _ := hbnbapi.New(ts.URL, 100)
	_, err := cl.CreatePlace(context.Background(), "tok", domain.PlaceInput{Title: "x"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if want := "price must be positive"; err == nil || !strings.Contains(err.Error(), want) {
		t.Fatalf("error should carry server message, got %v", err)
	}
}

func TestDeletePlace_NoRetryOnServerError(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(500)
	}))
	defer ts.Close()

	cl, _ := hbnbapi.New(ts.URL, 100)
	if err := cl.DeletePlace(context.Background(), "tok", "p1"); err == nil {
		t.Fatalf("expected error")
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("mutations must not retry, got %d calls", n)
	}
}

func TestLogin_LegacyFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.WriteHeader(404)
		case "/users/login":
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "legacy-token"})
		default:
			w.WriteHeader(500)
		}
	}))
	defer ts.Close()

	cl, _ := hbnbapi.New(ts.URL, 100)
	tok, err := cl.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if tok != "legacy-token" {
		t.Fatalf("token = %q", tok)
	}
}
