package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-places/internal/pipeline"
)

// ResultsHandler serves a finished pipeline result. The result is never
// modified after the handler is created.
type ResultsHandler struct {
	result *pipeline.Result
}

// NewResultsHandler creates a handler over result.
func NewResultsHandler(result *pipeline.Result) *ResultsHandler {
	if result == nil {
		result = &pipeline.Result{}
	}
	return &ResultsHandler{result: result}
}

type groupsResponse struct {
	Groups []pipeline.Group `json:"groups"`
	Count  int              `json:"count"`
}

// ListPlaces returns the place groups. ?q= keeps groups whose label contains
// the query, case-insensitively.
func (h *ResultsHandler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, filterGroups(h.result.Places, r.URL.Query().Get("q")))
}

// GetPlace returns one place group by its index.
func (h *ResultsHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	h.getGroup(w, r, h.result.Places, "place")
}

// ListEvents returns the event groups, filtered like ListPlaces.
func (h *ResultsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, filterGroups(h.result.Events, r.URL.Query().Get("q")))
}

// GetEvent returns one event group by its index.
func (h *ResultsHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	h.getGroup(w, r, h.result.Events, "event")
}

// Stats returns the run counters.
func (h *ResultsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.result.Stats)
}

func (h *ResultsHandler) getGroup(w http.ResponseWriter, r *http.Request, groups []pipeline.Group, kind string) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid "+kind+" index")
		return
	}
	if index < 0 || index >= len(groups) {
		respondError(w, http.StatusNotFound, kind+" not found")
		return
	}
	respondJSON(w, http.StatusOK, groups[index])
}

func filterGroups(groups []pipeline.Group, query string) groupsResponse {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]pipeline.Group, 0, len(groups))
	for _, g := range groups {
		if query == "" || strings.Contains(strings.ToLower(g.Label), query) {
			out = append(out, g)
		}
	}
	return groupsResponse{Groups: out, Count: len(out)}
}
