package api

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// SettingsHandler serves the settings singleton
type SettingsHandler struct {
	service portfolio.Service
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(service portfolio.Service) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get returns the settings row, 404 when none was saved yet
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.GetSettings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, s)
}

// Save upserts the settings row and returns it
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	rec, err := decodeRecord(w, r, portfolio.CollectionSettings)
	if err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := h.service.SaveSettings(r.Context(), rec.(*portfolio.Settings))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, saved)
}
