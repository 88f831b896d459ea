package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string         `json:"error"`
	Kind  portfolio.Kind `json:"kind"`
}

// KindBadRequest marks malformed requests that never reached the gateway.
const KindBadRequest portfolio.Kind = "bad_request"

// KindUnauthorized marks requests without a valid admin session.
const KindUnauthorized portfolio.Kind = "unauthorized"

var errBadRequest = errors.New("bad request")

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind portfolio.Kind) int {
	switch kind {
	case portfolio.KindNotFound:
		return http.StatusNotFound
	case portfolio.KindConflict:
		return http.StatusConflict
	case portfolio.KindInvalid:
		return http.StatusUnprocessableEntity
	case portfolio.KindTransport:
		return http.StatusBadGateway
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := portfolio.KindOf(err)
	if errors.Is(err, errBadRequest) {
		kind = KindBadRequest
	}
	status := StatusFor(kind)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "kind", kind, "err", err)
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: err.Error(), Kind: kind})
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, ErrorResponse{Error: "admin session required", Kind: KindUnauthorized})
}
