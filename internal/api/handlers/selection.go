package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/response"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/service"
)

// SelectionHandler handles the comparison selection of a session.
type SelectionHandler struct {
	fundService *service.FundService
}

// NewSelectionHandler creates a new SelectionHandler
func NewSelectionHandler(fundService *service.FundService) *SelectionHandler {
	return &SelectionHandler{
		fundService: fundService,
	}
}

// Selection handles GET requests for the current selection.
//
// Endpoint: GET /api/selection
// Response: 200 OK with model.SelectionResponse
func (h *SelectionHandler) Selection(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	sel, err := h.fundService.Selection(r.Context(), sess)
	if err != nil {
		response.RespondServiceError(w, err, "failed to load selection")
		return
	}

	response.RespondJSON(w, http.StatusOK, sel)
}

// Add handles POST requests adding a scheme to the selection.
//
// Endpoint: POST /api/selection/{schemeCode}
// Response: 200 OK with model.ToggleResponse
// Error: 404 Not Found if the scheme is not in the catalog
// Error: 409 Conflict if the selection is full
func (h *SelectionHandler) Add(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	code := chi.URLParam(r, "schemeCode")
	if err := h.fundService.AddToSelection(r.Context(), sess, code); err != nil {
		response.RespondServiceError(w, err, "failed to add fund to selection")
		return
	}

	respondMembership(w, code, true)
}

// Remove handles DELETE requests removing a scheme from the selection.
//
// Endpoint: DELETE /api/selection/{schemeCode}
// Response: 200 OK with model.ToggleResponse
// Error: 404 Not Found if the scheme is not in the catalog
func (h *SelectionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	code := chi.URLParam(r, "schemeCode")
	if err := h.fundService.RemoveFromSelection(r.Context(), sess, code); err != nil {
		response.RespondServiceError(w, err, "failed to remove fund from selection")
		return
	}

	respondMembership(w, code, false)
}

// Toggle handles POST requests flipping a scheme's selection.
//
// Endpoint: POST /api/selection/{schemeCode}/toggle
// Response: 200 OK with model.ToggleResponse
// Error: 409 Conflict if the selection is full
func (h *SelectionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	resp, err := h.fundService.ToggleSelection(r.Context(), sess, chi.URLParam(r, "schemeCode"))
	if err != nil {
		response.RespondServiceError(w, err, "failed to toggle selection")
		return
	}

	response.RespondJSON(w, http.StatusOK, resp)
}

// respondMembership answers with the membership of an already validated code.
func respondMembership(w http.ResponseWriter, code string, member bool) {
	f, _ := parseSchemeCode(code)
	response.RespondJSON(w, http.StatusOK, model.ToggleResponse{SchemeCode: f, Member: member})
}
