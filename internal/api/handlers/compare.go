package handlers

import (
	"net/http"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/response"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/service"
)

// CompareHandler handles the comparison view and its auto refresh.
type CompareHandler struct {
	fundService *service.FundService
	scheduler   *service.RefreshScheduler
	interval    string
}

// NewCompareHandler creates a new CompareHandler. interval is reported to
// clients watching the comparison.
func NewCompareHandler(fundService *service.FundService, scheduler *service.RefreshScheduler, interval string) *CompareHandler {
	return &CompareHandler{
		fundService: fundService,
		scheduler:   scheduler,
		interval:    interval,
	}
}

// WatchResponse reports the auto refresh state of a session.
type WatchResponse struct {
	Watching bool   `json:"watching"`
	Interval string `json:"interval,omitempty"`
}

// Compare handles GET requests for the comparison of the selected funds.
//
// Endpoint: GET /api/compare
// Response: 200 OK with model.ComparisonResult
// Error: 409 Conflict if fewer than two funds are selected
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.fundService.Compare(r.Context(), sess)
	if err != nil {
		response.RespondServiceError(w, err, "failed to compare funds")
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Watch handles POST requests starting the auto refresh of the comparison.
//
// Endpoint: POST /api/compare/watch
// Response: 202 Accepted with WatchResponse
// Error: 409 Conflict if fewer than two funds are selected
// Error: 401 Unauthorized if the session was closed in the meantime
func (h *CompareHandler) Watch(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	if !sess.CanCompare() {
		response.RespondServiceError(w, apperrors.ErrNotEnoughFunds, "failed to watch comparison")
		return
	}

	if err := h.scheduler.Watch(sess); err != nil {
		response.RespondServiceError(w, err, "failed to watch comparison")
		return
	}

	response.RespondJSON(w, http.StatusAccepted, WatchResponse{Watching: true, Interval: h.interval})
}

// Unwatch handles DELETE requests stopping the auto refresh.
//
// Endpoint: DELETE /api/compare/watch
// Response: 200 OK with WatchResponse
func (h *CompareHandler) Unwatch(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	h.scheduler.Unwatch(sess.ID())
	response.RespondJSON(w, http.StatusOK, WatchResponse{Watching: false})
}
