package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// maxRecordBytes bounds a JSON record body.
const maxRecordBytes = 1 << 20

// CollectionsHandler exposes the content gateway over REST
type CollectionsHandler struct {
	service portfolio.Service
}

// NewCollectionsHandler creates a new collections handler
func NewCollectionsHandler(service portfolio.Service) *CollectionsHandler {
	return &CollectionsHandler{service: service}
}

// Routes returns the collection routes. Reads are public; writes run
// behind the gate middlewares.
func (h *CollectionsHandler) Routes(gate ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{collection}", h.List)
	r.Get("/{collection}/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(gate...)
		r.Post("/{collection}", h.Create)
		r.Put("/{collection}/{id}", h.Update)
		r.Delete("/{collection}/{id}", h.Delete)
	})
	return r
}

func collectionParam(r *http.Request) (portfolio.Collection, error) {
	return portfolio.ParseCollection(chi.URLParam(r, "collection"))
}

func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", errBadRequest, chi.URLParam(r, "id"))
	}
	return id, nil
}

// ParseQuery reads the list filter from ?active=, ?order= and ?limit=.
func ParseQuery(r *http.Request) (portfolio.Query, error) {
	var q portfolio.Query
	values := r.URL.Query()
	if v := values.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return q, fmt.Errorf("%w: active must be a boolean", errBadRequest)
		}
		q.ActiveOnly = active
	}
	switch values.Get("order") {
	case "", "asc":
	case "desc":
		q.Descending = true
	default:
		return q, fmt.Errorf("%w: order must be asc or desc", errBadRequest)
	}
	if v := values.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return q, fmt.Errorf("%w: limit must be a non-negative integer", errBadRequest)
		}
		q.Limit = limit
	}
	return q, nil
}

func decodeRecord(w http.ResponseWriter, r *http.Request, c portfolio.Collection) (portfolio.Record, error) {
	rec, err := portfolio.NewRecord(c)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecordBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(rec); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return rec, nil
}

// List returns the rows of a collection
func (h *CollectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	c, err := collectionParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := ParseQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.service.List(r.Context(), c, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []portfolio.Record{}
	}
	render.JSON(w, r, rows)
}

// Get returns one row
func (h *CollectionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := collectionParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.service.Get(r.Context(), c, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, rec)
}

// Create inserts a row. Any id in the body is ignored.
func (h *CollectionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, err := collectionParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := decodeRecord(w, r, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.service.Create(r.Context(), rec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}

// Update replaces the row named by the path id
func (h *CollectionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, err := collectionParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := decodeRecord(w, r, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec.SetRecordID(id)
	if err := h.service.Update(r.Context(), rec); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a row
func (h *CollectionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, err := collectionParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), c, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
