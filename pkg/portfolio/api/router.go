package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/media"
)

// RouterConfig collects the dependencies of the REST surface. Without Auth
// every admin route answers 401; without Uploader uploads are not routed.
type RouterConfig struct {
	Service        portfolio.Service
	Auth           *Auth
	Uploader       *media.Uploader
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// NewAPIRouter builds the /api/v1 routes. Reads are public; writes, uploads
// and logout sit behind the admin session gate.
func NewAPIRouter(config RouterConfig) chi.Router {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	collections := NewCollectionsHandler(config.Service)
	settings := NewSettingsHandler(config.Service)

	gate := []func(http.Handler) http.Handler{denyAll}
	login := http.HandlerFunc(writeUnauthorized)
	logout := http.HandlerFunc(writeUnauthorized)
	if config.Auth != nil {
		gate = []func(http.Handler) http.Handler{config.Auth.Verifier(), config.Auth.Authenticator}
		login = config.Auth.Login
		logout = config.Auth.Logout
	} else {
		logger.Warn("admin writes disabled: no session gate configured")
	}

	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := config.Service.Ping(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Mount("/collections", collections.Routes(gate...))
	r.Get("/settings", settings.Get)
	r.Post("/admin/login", login)

	r.Group(func(r chi.Router) {
		r.Use(gate...)

		r.Post("/admin/logout", logout)
		r.Put("/settings", settings.Save)
		if config.Uploader != nil {
			r.Post("/uploads", NewUploadsHandler(config.Uploader, config.MaxUploadBytes).Upload)
		} else {
			logger.Warn("image uploads disabled: no uploader configured")
		}
	})

	return r
}

func denyAll(http.Handler) http.Handler {
	return http.HandlerFunc(writeUnauthorized)
}
