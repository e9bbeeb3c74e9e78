package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"hbnb_web/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var funcs = template.FuncMap{
	"price": func(v float64) string {
		if v == float64(int64(v)) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.2f", v)
	},
}

func parseTemplates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// View is the nav state every page carries. It is derived from the
// decoded token and steers cosmetic rendering only.
type View struct {
	LoggedIn bool
	Owner    bool
}

// viewer is the per-request session snapshot. LoggedIn tracks cookie
// presence (the logout affordance keys off it even when the token is
// garbage); Decoded tracks whether the claims could be read, which is
// what protected pages require.
type viewer struct {
	Token    string
	Subject  string
	Role     string
	LoggedIn bool
	Decoded  bool
}

func (v viewer) view() View {
	return View{LoggedIn: v.LoggedIn, Owner: v.Decoded && session.IsOwner(v.Role)}
}

func (h *Handlers) viewer(r *http.Request) viewer {
	tok, ok := h.Store.Get(r)
	if !ok {
		return viewer{}
	}
	vw := viewer{Token: tok, LoggedIn: true}
	c, err := session.Decode(tok)
	if err != nil {
		// fail-open for nav decorations, fail-closed for protected pages
		log.Warn().Err(err).Msg("session token decode failed")
		return vw
	}
	vw.Subject = c.Subject
	vw.Role = c.Role
	vw.Decoded = true
	return vw
}

func (h *Handlers) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tpl.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

// problemData feeds the full-page notices (access denied, not found,
// dead backend). Whole-page contexts replace the body entirely instead
// of leaving a half-initialized form behind.
type problemData struct {
	View     View
	Title    string
	Message  string
	BackHref string
	BackText string
}

func (h *Handlers) renderDenied(w http.ResponseWriter, vw viewer, message, backHref, backText string) {
	h.render(w, http.StatusForbidden, "problem", problemData{
		View: vw.view(), Title: "Access denied",
		Message: message, BackHref: backHref, BackText: backText,
	})
}

func (h *Handlers) renderNotFound(w http.ResponseWriter, vw viewer, message string) {
	h.render(w, http.StatusNotFound, "problem", problemData{
		View: vw.view(), Title: "Not found",
		Message: message, BackHref: "/", BackText: "Back to the listing",
	})
}

func (h *Handlers) renderFailure(w http.ResponseWriter, vw viewer, message string) {
	h.render(w, http.StatusBadGateway, "problem", problemData{
		View: vw.view(), Title: "Something went wrong",
		Message: message, BackHref: "/", BackText: "Back to the listing",
	})
}
