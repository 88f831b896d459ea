package site

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

// LocaleCookie remembers the visitor's language choice.
const LocaleCookie = "lang"

type videoContext struct {
	Page *Page
	Card VideoCard
}

var pageTemplate = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"pair": func(p *Page, c VideoCard) videoContext { return videoContext{Page: p, Card: c} },
}).ParseFS(templateFS, "templates/page.html"))

// Handler serves the public page.
type Handler struct {
	renderer *Renderer
	logger   *slog.Logger
}

// NewHandler creates a new site handler
func NewHandler(renderer *Renderer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{renderer: renderer, logger: logger}
}

// Routes returns the routes for the public site
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	return r
}

// Index renders the page in the negotiated locale.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	locale := h.locale(w, r)
	page := h.renderer.Page(r.Context(), locale)

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		h.logger.ErrorContext(r.Context(), "page render failed", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", string(locale))
	_, _ = buf.WriteTo(w)
}

// locale picks ?lang= first, storing it in a cookie, then the cookie, then
// Accept-Language.
func (h *Handler) locale(w http.ResponseWriter, r *http.Request) portfolio.Locale {
	if l, ok := i18n.ParseLocale(r.URL.Query().Get("lang")); ok {
		http.SetCookie(w, &http.Cookie{
			Name:     LocaleCookie,
			Value:    string(l),
			Path:     "/",
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		return l
	}
	if c, err := r.Cookie(LocaleCookie); err == nil {
		if l, ok := i18n.ParseLocale(c.Value); ok {
			return l
		}
	}
	return i18n.Negotiate(r.Header.Get("Accept-Language"))
}
