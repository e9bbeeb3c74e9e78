package session

import (
	"net/http"
	"time"
)

// DefaultCookie matches the name the browser pages historically used.
const DefaultCookie = "jwt"

// Store reads and writes the session token cookie. The cookie is
// session-scoped (no Max-Age), path-root, SameSite=Lax. Absence of the
// cookie is a normal state, not an error.
type Store struct {
	Name string
}

func NewStore() Store { return Store{Name: DefaultCookie} }

func (s Store) Get(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.name())
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (s Store) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name(),
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear overwrites the cookie with an already-expired date, which is
// the portable way to force user agents to drop it.
func (s Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s Store) name() string {
	if s.Name == "" {
		return DefaultCookie
	}
	return s.Name
}
