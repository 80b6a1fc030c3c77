// Package query exposes the query engine over HTTP as JSON.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"ohana/internal/core"
	"ohana/pkg/domain"
)

// Engine is the subset of core.Service served over HTTP.
type Engine interface {
	GetPerson(ctx context.Context, id int64) (*domain.Person, error)
	GetLocation(ctx context.Context, id int64) (*domain.Location, error)
	GetPeople(ctx context.Context, limit, offset *int) ([]domain.Person, error)
	ShortestPathDetail(ctx context.Context, person1, person2 int64) ([]domain.Person, error)
	SearchPeople(ctx context.Context, text string) ([]domain.Person, error)
	SearchPlaces(ctx context.Context, text string) ([]domain.Location, error)
	Stats() core.SnapshotStats
}

var _ Engine = (*core.Service)(nil)

// Handler routes /api/v1 query requests and /healthz.
type Handler struct {
	Engine Engine
	Logger core.Logger
}

// NewHandler constructs a query HTTP handler. A nil logger discards failures.
func NewHandler(engine Engine, logger core.Logger) *Handler {
	return &Handler{Engine: engine, Logger: logger}
}

const apiPrefix = "/api/v1/"

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Engine == nil {
		writeError(w, http.StatusInternalServerError, "query engine not configured")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == "/healthz" {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "snapshot": h.Engine.Stats()})
		return
	}
	if !strings.HasPrefix(path, apiPrefix) {
		http.NotFound(w, r)
		return
	}
	segments := strings.Split(strings.TrimPrefix(path, apiPrefix), "/")
	switch {
	case len(segments) == 1 && segments[0] == "people":
		h.handleListPeople(w, r)
	case len(segments) == 2 && segments[0] == "people":
		h.handlePerson(w, r, segments[1])
	case len(segments) == 4 && segments[0] == "people" && segments[2] == "path":
		h.handlePath(w, r, segments[1], segments[3])
	case len(segments) == 2 && segments[0] == "locations":
		h.handleLocation(w, r, segments[1])
	case len(segments) == 2 && segments[0] == "search" && segments[1] == "people":
		h.handleSearchPeople(w, r)
	case len(segments) == 2 && segments[0] == "search" && segments[1] == "places":
		h.handleSearchPlaces(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleListPeople(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := optionalInt(q, "limit")
	if err != nil {
		h.fail(w, err)
		return
	}
	offset, err := optionalInt(q, "offset")
	if err != nil {
		h.fail(w, err)
		return
	}
	people, err := h.Engine.GetPeople(r.Context(), limit, offset)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"people": people})
}

func (h *Handler) handlePerson(w http.ResponseWriter, r *http.Request, raw string) {
	id, err := parseID("id", raw)
	if err != nil {
		h.fail(w, err)
		return
	}
	p, err := h.Engine.GetPerson(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"person": p})
}

func (h *Handler) handleLocation(w http.ResponseWriter, r *http.Request, raw string) {
	id, err := parseID("id", raw)
	if err != nil {
		h.fail(w, err)
		return
	}
	l, err := h.Engine.GetLocation(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"location": l})
}

type pathResponse struct {
	Path   []domain.Person `json:"path"`
	Reason string          `json:"reason,omitempty"`
}

// handlePath answers 200 with an empty path when the people are unrelated or
// unknown; reason tells the two apart.
func (h *Handler) handlePath(w http.ResponseWriter, r *http.Request, rawFrom, rawTo string) {
	from, err := parseID("person1", rawFrom)
	if err != nil {
		h.fail(w, err)
		return
	}
	to, err := parseID("person2", rawTo)
	if err != nil {
		h.fail(w, err)
		return
	}
	path, err := h.Engine.ShortestPathDetail(r.Context(), from, to)
	switch {
	case errors.Is(err, domain.ErrUnknownPerson):
		writeJSON(w, http.StatusOK, pathResponse{Path: []domain.Person{}, Reason: "unknown person"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusOK, pathResponse{Path: []domain.Person{}, Reason: "no path"})
	case err != nil:
		h.fail(w, err)
	default:
		writeJSON(w, http.StatusOK, pathResponse{Path: path})
	}
}

func (h *Handler) handleSearchPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.Engine.SearchPeople(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"people": people})
}

func (h *Handler) handleSearchPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := h.Engine.SearchPlaces(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": places})
}

func parseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(field, "must be an integer")
	}
	return id, nil
}

func optionalInt(q map[string][]string, field string) (*int, error) {
	values, ok := q[field]
	if !ok || len(values) == 0 || values[0] == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(values[0])
	if err != nil {
		return nil, domain.NewValidationError(field, "must be an integer")
	}
	return &v, nil
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		if h.Logger != nil {
			h.Logger.Error("query handler failed", "error", err)
		}
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
