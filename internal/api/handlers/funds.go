package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/request"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/response"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/service"
)

// FundHandler handles HTTP requests for fund endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the fundService.
type FundHandler struct {
	fundService *service.FundService
}

// NewFundHandler creates a new FundHandler with the provided service dependency.
func NewFundHandler(fundService *service.FundService) *FundHandler {
	return &FundHandler{
		fundService: fundService,
	}
}

// ReloadResponse reports the catalog after a manual reload.
type ReloadResponse struct {
	Version int64 `json:"version"`
	Funds   int   `json:"funds"`
}

// Funds handles GET requests to browse the catalog. Filter parameters narrow
// this listing only; nothing is saved. Without filter parameters the
// session's current filters apply.
//
// Endpoint: GET /api/funds?search=&amc=&category=&type=
// Response: 200 OK with array of model.FundView, selected funds first
// Error: 400 Bad Request if a filter parameter is invalid
// Error: 502 Bad Gateway if the catalog cannot be loaded
func (h *FundHandler) Funds(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	filters, err := request.ParseFundFilters(r.URL.Query())
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	funds, err := h.fundService.ListFunds(r.Context(), sess, filters)
	if err != nil {
		response.RespondServiceError(w, err, "failed to list funds")
		return
	}

	response.RespondJSON(w, http.StatusOK, funds)
}

// Search handles POST requests that apply filters to the session. The
// filters become the session's current filters, are saved with the search
// text in the search history, and the narrowed catalog is returned.
//
// Endpoint: POST /api/funds/search
// Request Body: SearchRequest (searchText, selectedAMC, selectedCategory, selectedType, all optional)
// Response: 200 OK with array of model.FundView, selected funds first
// Error: 400 Bad Request if the body is malformed or a filter is invalid
// Error: 502 Bad Gateway if the catalog cannot be loaded
func (h *FundHandler) Search(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.SearchRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	filters, err := req.Filters()
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	funds, err := h.fundService.ApplyFilters(r.Context(), sess, filters)
	if err != nil {
		response.RespondServiceError(w, err, "failed to search funds")
		return
	}

	response.RespondJSON(w, http.StatusOK, funds)
}

// Options handles GET requests for the values of each filter picker.
//
// Endpoint: GET /api/funds/options
// Response: 200 OK with model.FilterOptions
// Error: 502 Bad Gateway if the catalog cannot be loaded
func (h *FundHandler) Options(w http.ResponseWriter, r *http.Request) {
	opts, err := h.fundService.Options(r.Context())
	if err != nil {
		response.RespondServiceError(w, err, "failed to load filter options")
		return
	}

	response.RespondJSON(w, http.StatusOK, opts)
}

// Reload handles POST requests to fetch the catalog again.
//
// Endpoint: POST /api/funds/reload
// Response: 200 OK with ReloadResponse
// Error: 502 Bad Gateway if the catalog cannot be loaded
func (h *FundHandler) Reload(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	catalog, err := h.fundService.Reload(r.Context(), sess)
	if err != nil {
		response.RespondServiceError(w, err, "failed to reload funds")
		return
	}

	response.RespondJSON(w, http.StatusOK, ReloadResponse{
		Version: catalog.Version,
		Funds:   len(catalog.Funds),
	})
}

// FundNAV handles GET requests for the NAV history of one scheme.
//
// Endpoint: GET /api/funds/{schemeCode}/nav
// Response: 200 OK with model.NAVResponse, most recent point first
// Error: 400 Bad Request if the scheme code is not a positive integer
// Error: 404 Not Found if the scheme has no NAV data
// Error: 502 Bad Gateway if the upstream request fails
func (h *FundHandler) FundNAV(w http.ResponseWriter, r *http.Request) {
	nav, err := h.fundService.FundNAV(r.Context(), chi.URLParam(r, "schemeCode"))
	if err != nil {
		response.RespondServiceError(w, err, "failed to retrieve nav history")
		return
	}

	response.RespondJSON(w, http.StatusOK, nav)
}
