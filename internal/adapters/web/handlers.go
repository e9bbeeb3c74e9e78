package web

import (
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hbnb_web/internal/app"
	"hbnb_web/internal/domain"
	"hbnb_web/internal/session"
	"hbnb_web/internal/validate"
)

type Handlers struct {
	Store session.Store
	Q     *app.QueryService
	C     *app.CommandService
	Am    *app.AmenityLoader

	tpl *template.Template
}

func NewHandlers(store session.Store, q *app.QueryService, c *app.CommandService, am *app.AmenityLoader) *Handlers {
	return &Handlers{Store: store, Q: q, C: c, Am: am, tpl: parseTemplates()}
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	assets, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(assets))))

	s.mux.Get("/", h.index)
	s.mux.Get("/login", h.loginPage)
	s.mux.Post("/login", h.login)
	s.mux.Get("/logout", h.logout)
	s.mux.Get("/register", h.registerPage)
	s.mux.Post("/register", h.register)

	s.mux.Get("/my-places", h.myPlaces)
	s.mux.Get("/places/new", h.newPlacePage)
	s.mux.Post("/places", h.createPlace)
	s.mux.Get("/places/{id}", h.placeDetail)
	s.mux.Post("/places/{id}", h.updatePlace)
	s.mux.Get("/places/{id}/edit", h.editPlacePage)
	s.mux.Post("/places/{id}/reviews", h.addReview)
	s.mux.Post("/places/{id}/delete", h.beginDelete)
	s.mux.Post("/places/{id}/delete/confirm", h.confirmDelete)
	s.mux.Post("/places/{id}/delete/cancel", h.cancelDelete)
}

// requireSession gates the protected pages: no cookie, or a cookie
// whose claims can't be decoded, replaces the whole page with a denial
// notice. The backend still re-checks everything; this only keeps
// half-initialized forms off the screen.
func (h *Handlers) requireSession(w http.ResponseWriter, r *http.Request) (viewer, bool) {
	vw := h.viewer(r)
	if !vw.LoggedIn || !vw.Decoded {
		h.renderDenied(w, vw, "You must be signed in to view this page.", "/login", "Sign in")
		return vw, false
	}
	return vw, true
}

// ---- listing ----

type indexData struct {
	View     View
	Places   []domain.Place
	Prices   []float64
	MaxPrice float64
	Error    string
}

func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	vw := h.viewer(r)
	var maxPrice float64
	if raw := r.URL.Query().Get("max_price"); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			maxPrice = f
		}
	}

	data := indexData{View: vw.view(), MaxPrice: maxPrice}
	page, err := h.Q.ListPlaces(r.Context(), vw.Token, maxPrice)
	if err != nil {
		log.Error().Err(err).Msg("list places failed")
		data.Error = "Failed to load places."
		h.render(w, http.StatusOK, "index", data)
		return
	}
	data.Places = page.Places
	data.Prices = page.Prices
	h.render(w, http.StatusOK, "index", data)
}

// ---- auth ----

type loginData struct {
	View   View
	Email  string
	Error  string
	Notice string
}

func (h *Handlers) loginPage(w http.ResponseWriter, r *http.Request) {
	data := loginData{View: h.viewer(r).view()}
	if r.URL.Query().Get("registered") == "1" {
		data.Notice = "Account created. Sign in to continue."
	}
	h.render(w, http.StatusOK, "login", data)
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	tok, err := h.C.Login(r.Context(), email, password)
	if err != nil {
		msg := "Sign-in failed, try again later."
		if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrValidation) {
			msg = "Invalid credentials."
		}
		log.Warn().Err(err).Msg("login failed")
		h.render(w, http.StatusUnauthorized, "login", loginData{
			View: h.viewer(r).view(), Email: email, Error: msg,
		})
		return
	}
	h.Store.Set(w, tok)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	h.Store.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type registerData struct {
	View   View
	Form   validate.RegisterForm
	Errors []string
}

func (h *Handlers) registerPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "register", registerData{View: h.viewer(r).view()})
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	form := validate.RegisterForm{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		UserName:  r.FormValue("username"),
		Email:     r.FormValue("email"),
		Password:  r.FormValue("password"),
		Role:      r.FormValue("role"),
	}
	res := validate.Register(form)
	if !res.OK() {
		h.render(w, http.StatusUnprocessableEntity, "register", registerData{
			View: h.viewer(r).view(), Form: form, Errors: res.Errors,
		})
		return
	}

	tok, err := h.C.RegisterAndLogin(r.Context(), res.Input)
	switch {
	case err == nil:
		h.Store.Set(w, tok)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, app.ErrAutoLoginFailed):
		// account exists, let the user sign in by hand
		log.Warn().Err(err).Msg("auto-login after register failed")
		http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
	default:
		log.Warn().Err(err).Msg("register failed")
		msg := "Registration failed."
		if errors.Is(err, domain.ErrValidation) {
			msg = err.Error()
		}
		h.render(w, http.StatusUnprocessableEntity, "register", registerData{
			View: h.viewer(r).view(), Form: form, Errors: []string{msg},
		})
	}
}

// ---- place detail & reviews ----

type detailData struct {
	View         View
	PlaceID      string
	Place        domain.Place
	PlaceError   string
	Reviews      []domain.Review
	ReviewsError string
	CanReview    bool

	ReviewForm   validate.ReviewForm
	ReviewFields map[string]validate.Field
	ReviewErrors []string
	FormError    string
}

// buildDetail fetches the place and its reviews concurrently. The two
// regions are independent: either can fail without taking down the
// other, and each result only ever touches its own region.
func (h *Handlers) buildDetail(r *http.Request, vw viewer, id string) (detailData, error) {
	data := detailData{
		View:         vw.view(),
		PlaceID:      id,
		CanReview:    vw.LoggedIn && vw.Decoded,
		ReviewFields: map[string]validate.Field{},
	}

	var (
		wg          sync.WaitGroup
		place       domain.Place
		reviews     []domain.Review
		perr, rverr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		place, perr = h.Q.GetPlace(r.Context(), vw.Token, id)
	}()
	go func() {
		defer wg.Done()
		reviews, rverr = h.Q.ListReviews(r.Context(), vw.Token, id)
	}()
	wg.Wait()

	if perr != nil {
		return data, perr
	}
	data.Place = place

	if rverr != nil {
		log.Error().Err(rverr).Str("place", id).Msg("list reviews failed")
		data.ReviewsError = "Failed to load reviews."
	} else {
		data.Reviews = reviews
	}
	return data, nil
}

func (h *Handlers) placeDetail(w http.ResponseWriter, r *http.Request) {
	vw := h.viewer(r)
	id := chi.URLParam(r, "id")

	data, err := h.buildDetail(r, vw, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.renderNotFound(w, vw, "This place does not exist.")
			return
		}
		log.Error().Err(err).Str("place", id).Msg("get place failed")
		h.renderFailure(w, vw, "Failed to load this place.")
		return
	}
	h.render(w, http.StatusOK, "detail", data)
}

func (h *Handlers) addReview(w http.ResponseWriter, r *http.Request) {
	vw := h.viewer(r)
	if !vw.LoggedIn || !vw.Decoded {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	id := chi.URLParam(r, "id")

	form := validate.ReviewForm{Text: r.FormValue("text"), Rating: r.FormValue("rating")}
	res := validate.Review(form)
	if !res.OK() {
		data, err := h.buildDetail(r, vw, id)
		if err != nil {
			h.renderNotFound(w, vw, "This place does not exist.")
			return
		}
		data.ReviewForm = form
		data.ReviewFields = res.Fields
		data.ReviewErrors = res.Errors
		h.render(w, http.StatusUnprocessableEntity, "detail", data)
		return
	}

	if err := h.C.AddReview(r.Context(), vw.Token, id, res.Text, res.Rating); err != nil {
		log.Error().Err(err).Str("place", id).Msg("add review failed")
		data, derr := h.buildDetail(r, vw, id)
		if derr != nil {
			h.renderNotFound(w, vw, "This place does not exist.")
			return
		}
		data.ReviewForm = form
		data.FormError = "Failed to submit your review."
		h.render(w, http.StatusBadGateway, "detail", data)
		return
	}
	// append-and-refetch: the redirect re-renders from fresh data
	http.Redirect(w, r, "/places/"+id, http.StatusSeeOther)
}

// ---- create & edit forms ----

type placeFormData struct {
	View   View
	Mode   string // create | edit
	Action string
	Form   validate.PlaceForm
	Fields map[string]validate.Field
	Errors []string

	Amenities      []domain.Amenity
	AmenitiesError string
	Selected       map[string]bool

	FormError string
}

func (h *Handlers) loadAmenities(r *http.Request, vw viewer, data *placeFormData) {
	ams, err := h.Am.Load(r.Context(), vw.Token)
	if err != nil {
		log.Error().Err(err).Msg("load amenities failed")
		data.AmenitiesError = "Failed to load amenities."
		return
	}
	data.Amenities = ams
}

func selectedSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func (h *Handlers) newPlacePage(w http.ResponseWriter, r *http.Request) {
	vw, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	data := placeFormData{
		View: vw.view(), Mode: "create", Action: "/places",
		Fields:   map[string]validate.Field{},
		Selected: map[string]bool{},
	}
	h.loadAmenities(r, vw, &data)
	h.render(w, http.StatusOK, "place_form", data)
}

func (h *Handlers) createPlace(w http.ResponseWriter, r *http.Request) {
	vw, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := placeFormFromRequest(r)
	data := placeFormData{
		View: vw.view(), Mode: "create", Action: "/places",
		Form: form, Selected: selectedSet(form.Amenities),
	}

	res := validate.Place(form)
	data.Fields = res.Fields
	if !res.OK() {
		data.Errors = res.Errors
		h.loadAmenities(r, vw, &data)
		h.render(w, http.StatusUnprocessableEntity, "place_form", data)
		return
	}

	p, err := h.C.CreatePlace(r.Context(), vw.Token, res.Input)
	if err != nil {
		log.Error().Err(err).Msg("create place failed")
		data.FormError = mutationMessage(err, "Failed to create the place.")
		h.loadAmenities(r, vw, &data)
		h.render(w, http.StatusBadGateway, "place_form", data)
		return
	}
	http.Redirect(w, r, "/places/"+p.ID, http.StatusSeeOther)
}

// fetchOwned loads a place and verifies the session subject owns it.
// Hiding the buttons is not enough; the handlers re-check before every
// owner action, and the backend checks once more after that.
func (h *Handlers) fetchOwned(w http.ResponseWriter, r *http.Request, vw viewer, id string) (domain.Place, bool) {
	p, err := h.Q.GetPlace(r.Context(), vw.Token, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.renderNotFound(w, vw, "This place does not exist.")
		} else {
			log.Error().Err(err).Str("place", id).Msg("get place failed")
			h.renderFailure(w, vw, "Failed to load this place.")
		}
		return domain.Place{}, false
	}
	if p.OwnerID == "" || p.OwnerID != vw.Subject {
		h.renderDenied(w, vw, "You are not allowed to manage this place.", "/my-places", "Back to my places")
		return domain.Place{}, false
	}
	return p, true
}

func (h *Handlers) editPlacePage(w http.ResponseWriter, r *http.Request) {
	vw, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	p, ok := h.fetchOwned(w, r, vw, id)
	if !ok {
		return
	}

	ids := make([]string, 0, len(p.Amenities))
	for _, a := range p.Amenities {
		ids = append(ids, a.ID)
	}
	data := placeFormData{
		View: vw.view(), Mode: "edit", Action: "/places/" + id,
		Form:     placeFormFromPlace(p),
		Fields:   map[string]validate.Field{},
		Selected: selectedSet(ids),
	}
	h.loadAmenities(r, vw, &data)
	h.render(w, http.StatusOK, "place_form", data)
}

func (h *Handlers) updatePlace(w http.ResponseWriter, r *http.Request) {
	vw, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if _, ok := h.fetchOwned(w, r, vw, id); !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := placeFormFromRequest(r)
	data := placeFormData{
		View: vw.view(), Mode: "edit", Action: "/places/" + id,
		Form: form, Selected: selectedSet(form.Amenities),
	}

	res := validate.Place(form)
	data.Fields = res.Fields
	if !res.OK() {
		data.Errors = res.Errors
		h.loadAmenities(r, vw, &data)
		h.render(w, http.StatusUnprocessableEntity, "place_form", data)
		return
	}

	if _, err := h.C.UpdatePlace(r.Context(), vw.Token, id, res.Input); err != nil {
		log.Error().Err(err).Str("place", id).Msg("update place failed")
		if errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrUnauthorized) {
			h.renderDenied(w, vw, "You are not allowed to edit this place.", "/my-places", "Back to my places")
			return
		}
		data.FormError = mutationMessage(err, "Failed to save your changes.")
		h.loadAmenities(r, vw, &data)
		h.render(w, http.StatusBadGateway, "place_form", data)
		return
	}
	http.Redirect(w, r, "/places/"+id, http.StatusSeeOther)
}

func placeFormFromRequest(r *http.Request) validate.PlaceForm {
	return validate.PlaceForm{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Latitude:    r.FormValue("latitude"),
		Longitude:   r.FormValue("longitude"),
		Amenities:   r.Form["amenities"],
	}
}

func placeFormFromPlace(p domain.Place) validate.PlaceForm {
	f := validate.PlaceForm{
		Title:       p.Name,
		Description: p.Description,
		Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		Latitude:    strconv.FormatFloat(p.Latitude, 'f', -1, 64),
		Longitude:   strconv.FormatFloat(p.Longitude, 'f', -1, 64),
	}
	for _, a := range p.Amenities {
		f.Amenities = append(f.Amenities, a.ID)
	}
	return f
}

// mutationMessage prefers the backend's own validation message, falls
// back to a generic one for transport-level failures.
func mutationMessage(err error, generic string) string {
	if errors.Is(err, domain.ErrValidation) {
		return err.Error()
	}
	return generic
}

// ---- my places & delete ----

type myPlacesData struct {
	View   View
	Places []domain.Place
	Stats  domain.PlaceStats
	Error  string
	Notice string
}

func (h *Handlers) myPlaces(w http.ResponseWriter, r *http.Request) {
	vw, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	data := myPlacesData{View: vw.view()}
	switch r.URL.Query().Get("flash") {
	case "deleted":
		data.Notice = "Place deleted."
	case "confirm-expired":
		data.Error = "The delete confirmation expired, try again."
	case "delete-failed":
		data.Error = "Failed to delete the place."
	}

	mine, stats, err := h.Q.MyPlaces(r.Context(), vw.Token, vw.Subject)
	if err != nil {
		log.Error().Err(err).Msg("my places failed")
		data.Error = "Failed to load your places."
		h.render(w, http.StatusOK, "my_places", data)
		return
	}
	data.Places = mine
	data.Stats = stats
	h.render(w, http.StatusOK, "my_places", data)
}

type confirmData struct {
	View         View
	Place        domain.Place
	ConfirmToken string
}

func (h *Handlers) beginDelete(w http.ResponseWriter, r *http.Request) {
	vw, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	p, ok := h.fetchOwned(w, r, vw, id)
	if !ok {
		return
	}
	tok, err := h.C.BeginDelete(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("place", id).Msg("begin delete failed")
		h.renderFailure(w, vw, "Could not start the deletion.")
		return
	}
	h.render(w, http.StatusOK, "confirm_delete", confirmData{
		View: vw.view(), Place: p, ConfirmToken: tok,
	})
}

func (h *Handlers) confirmDelete(w http.ResponseWriter, r *http.Request) {
	vw, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	err := h.C.ConfirmDelete(r.Context(), vw.Token, r.FormValue("confirm_token"), id)
	switch {
	case err == nil:
		http.Redirect(w, r, "/my-places?flash=deleted", http.StatusSeeOther)
	case errors.Is(err, domain.ErrConfirmExpired):
		http.Redirect(w, r, "/my-places?flash=confirm-expired", http.StatusSeeOther)
	default:
		log.Error().Err(err).Str("place", id).Msg("delete place failed")
		http.Redirect(w, r, "/my-places?flash=delete-failed", http.StatusSeeOther)
	}
}

func (h *Handlers) cancelDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireSession(w, r); !ok {
		return
	}
	h.C.CancelDelete(r.Context(), r.FormValue("confirm_token"))
	http.Redirect(w, r, "/my-places", http.StatusSeeOther)
}
