package handlers

import (
	"net/http"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/response"
)

// PreferencesHandler exposes the saved preferences of a session.
type PreferencesHandler struct{}

// NewPreferencesHandler creates a new PreferencesHandler
func NewPreferencesHandler() *PreferencesHandler {
	return &PreferencesHandler{}
}

// SearchHistory handles GET requests for the search history.
//
// Endpoint: GET /api/preferences/search-history
// Response: 200 OK with array of strings, most recent first
func (h *PreferencesHandler) SearchHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	history, err := sess.Preferences().SearchHistory(r.Context())
	if err != nil {
		response.RespondServiceError(w, err, "failed to load search history")
		return
	}

	response.RespondJSON(w, http.StatusOK, history)
}

// ClearSearchHistory handles DELETE requests for the search history.
//
// Endpoint: DELETE /api/preferences/search-history
// Response: 204 No Content
func (h *PreferencesHandler) ClearSearchHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	if err := sess.Preferences().ClearSearchHistory(r.Context()); err != nil {
		response.RespondServiceError(w, err, "failed to clear search history")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Filters handles GET requests for the last saved filters.
//
// Endpoint: GET /api/preferences/filters
// Response: 200 OK with model.FundFilters
func (h *PreferencesHandler) Filters(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	filters, err := sess.Preferences().LastFilters(r.Context())
	if err != nil {
		response.RespondServiceError(w, err, "failed to load filters")
		return
	}

	response.RespondJSON(w, http.StatusOK, filters)
}

// ClearAll handles DELETE requests removing every saved preference of the
// user and resetting the session state.
//
// Endpoint: DELETE /api/preferences
// Response: 204 No Content
func (h *PreferencesHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	if err := sess.Preferences().ClearAll(r.Context()); err != nil {
		response.RespondServiceError(w, err, "failed to clear preferences")
		return
	}
	sess.ResetState()

	response.RespondJSON(w, http.StatusNoContent, nil)
}
