package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/response"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/service"
)

// FavoritesHandler handles the favorites of a session.
type FavoritesHandler struct {
	fundService *service.FundService
}

// NewFavoritesHandler creates a new FavoritesHandler
func NewFavoritesHandler(fundService *service.FundService) *FavoritesHandler {
	return &FavoritesHandler{
		fundService: fundService,
	}
}

// Favorites handles GET requests for the favorites with their latest NAV.
//
// Endpoint: GET /api/favorites
// Response: 200 OK with model.FavoritesResponse sorted by scheme name
func (h *FavoritesHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	favs, err := h.fundService.Favorites(r.Context(), sess)
	if err != nil {
		response.RespondServiceError(w, err, "failed to load favorites")
		return
	}

	response.RespondJSON(w, http.StatusOK, favs)
}

// Add handles POST requests adding a scheme to the favorites.
//
// Endpoint: POST /api/favorites/{schemeCode}
// Response: 200 OK with model.ToggleResponse
// Error: 404 Not Found if the scheme is not in the catalog
// Error: 409 Conflict if the favorites are full
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	code := chi.URLParam(r, "schemeCode")
	if err := h.fundService.AddFavorite(r.Context(), sess, code); err != nil {
		response.RespondServiceError(w, err, "failed to add favorite")
		return
	}

	respondMembership(w, code, true)
}

// Remove handles DELETE requests removing a scheme from the favorites.
//
// Endpoint: DELETE /api/favorites/{schemeCode}
// Response: 200 OK with model.ToggleResponse
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	code := chi.URLParam(r, "schemeCode")
	if err := h.fundService.RemoveFavorite(r.Context(), sess, code); err != nil {
		response.RespondServiceError(w, err, "failed to remove favorite")
		return
	}

	respondMembership(w, code, false)
}

// Toggle handles POST requests flipping a scheme's favorite state.
//
// Endpoint: POST /api/favorites/{schemeCode}/toggle
// Response: 200 OK with model.ToggleResponse
// Error: 409 Conflict if the favorites are full
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	resp, err := h.fundService.ToggleFavorite(r.Context(), sess, chi.URLParam(r, "schemeCode"))
	if err != nil {
		response.RespondServiceError(w, err, "failed to toggle favorite")
		return
	}

	response.RespondJSON(w, http.StatusOK, resp)
}
