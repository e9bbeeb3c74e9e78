package hbnbapi

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hbnb_web/internal/adapters/observability"
	"hbnb_web/internal/domain"
)

// Client talks JSON/HTTP to the HBnB REST backend. Reads are retried on
// transient failures; mutations are issued exactly once (they are not
// idempotent and the user gets the error inline instead).
type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("API base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

// Login exchanges credentials for a bearer token. Tries the auth route
// first, then the legacy users route some deployments still serve.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out map[string]any
	err := c.send(ctx, "", http.MethodPost, c.base+"/auth/login",
		map[string]any{"email": email, "password": password}, &out)
	if errors.Is(err, domain.ErrNotFound) {
		out = nil
		err = c.send(ctx, "", http.MethodPost, c.base+"/users/login",
			map[string]any{"username": email, "password": password}, &out)
	}
	if err != nil {
		return "", err
	}
	// response key drifted between deployments
	for _, k := range []string{"access_token", "token"} {
		if s, ok := out[k].(string); ok && s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("login response carried no token")
}

func (c *Client) Register(ctx context.Context, in domain.RegisterInput) error {
	body := map[string]any{
		"first_name": in.FirstName,
		"last_name":  in.LastName,
		"username":   in.UserName,
		"email":      in.Email,
		"password":   in.Password,
		"role":       in.Role,
	}
	return c.send(ctx, "", http.MethodPost, c.base+"/users/register", body, nil)
}

func (c *Client) ListPlaces(ctx context.Context, token string) ([]map[string]any, error) {
	var out []map[string]any
	return out, c.get(ctx, token, c.base+"/places/", &out)
}

func (c *Client) GetPlace(ctx context.Context, token, id string) (map[string]any, error) {
	var out map[string]any
	return out, c.get(ctx, token, c.base+"/places/"+id, &out)
}

func (c *Client) CreatePlace(ctx context.Context, token string, in domain.PlaceInput) (map[string]any, error) {
	var out map[string]any
	return out, c.send(ctx, token, http.MethodPost, c.base+"/places/", placeBody(in), &out)
}

func (c *Client) UpdatePlace(ctx context.Context, token, id string, in domain.PlaceInput) (map[string]any, error) {
	var out map[string]any
	return out, c.send(ctx, token, http.MethodPut, c.base+"/places/"+id, placeBody(in), &out)
}

func (c *Client) DeletePlace(ctx context.Context, token, id string) error {
	return c.send(ctx, token, http.MethodDelete, c.base+"/places/"+id, nil, nil)
}

func (c *Client) ListReviews(ctx context.Context, token, placeID string) ([]map[string]any, error) {
	var out []map[string]any
	return out, c.get(ctx, token, c.base+"/places/"+placeID+"/reviews/", &out)
}

// AddReview sends the rating as an integer. One page variant used to
// send it as a quoted string; that was drift, not a contract.
func (c *Client) AddReview(ctx context.Context, token, placeID, text string, rating int) error {
	body := map[string]any{"text": text, "rating": rating}
	return c.send(ctx, token, http.MethodPost, c.base+"/places/"+placeID+"/reviews/", body, nil)
}

func (c *Client) ListAmenities(ctx context.Context, token string) ([]map[string]any, error) {
	var out []map[string]any
	return out, c.get(ctx, token, c.base+"/amenities/", &out)
}

func placeBody(in domain.PlaceInput) map[string]any {
	amenities := in.Amenities
	if amenities == nil {
		amenities = []string{} // backend wants [], not null
	}
	return map[string]any{
		"title":       in.Title,
		"description": in.Description,
		"price":       in.Price,
		"latitude":    in.Latitude,
		"longitude":   in.Longitude,
		"amenities":   amenities,
	}
}

// ---- Internals ----

// get performs a GET with client-side rate limiting, retries, and JSON
// decode into out. Retries on 429 and transient 5xx, honoring
// Retry-After when provided.
func (c *Client) get(ctx context.Context, token, url string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := c.newRequest(ctx, token, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			observability.ObserveExternal("hbnb", http.MethodGet, 0, time.Since(start))
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("hbnb", http.MethodGet, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden, http.StatusBadRequest:
			msg := readErrBody(resp)
			resp.Body.Close()
			return statusErr(resp.StatusCode, msg)

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// send issues a single mutating request with a JSON body.
func (c *Client) send(ctx context.Context, token, method, url string, body, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, token, method, url, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		observability.ObserveExternal("hbnb", method, 0, time.Since(start))
		return err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("hbnb", method, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)

	case http.StatusNoContent:
		io.Copy(io.Discard, resp.Body)
		return nil

	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return statusErr(resp.StatusCode, readErrBody(resp))

	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("remote %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

func (c *Client) newRequest(ctx context.Context, token, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hbnb-web/1.0")
	return req, nil
}

func statusErr(code int, msg string) error {
	var base error
	switch code {
	case http.StatusNotFound:
		base = domain.ErrNotFound
	case http.StatusUnauthorized:
		base = domain.ErrUnauthorized
	case http.StatusForbidden:
		base = domain.ErrForbidden
	case http.StatusBadRequest:
		base = domain.ErrValidation
	default:
		return fmt.Errorf("remote %d: %s", code, msg)
	}
	if msg == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, msg)
}

// readErrBody pulls the backend's error message out of its JSON error
// envelope ({"error": ...} or {"message": ...}).
func readErrBody(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var env map[string]any
	if json.Unmarshal(b, &env) == nil {
		for _, k := range []string{"error", "message"} {
			if s, ok := env[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return strings.TrimSpace(string(b))
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// Base doubles each attempt (200ms, 400ms, 800ms...), up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
