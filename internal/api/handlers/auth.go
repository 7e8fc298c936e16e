package handlers

import (
	"net/http"
	"strconv"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/request"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/response"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/service"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login handles POST requests to start a session.
//
// Endpoint: POST /api/auth/login
// Request Body: LoginRequest (email, password)
// Response: 200 OK with model.LoginResponse
// Error: 400 Bad Request if the body is invalid or the credentials are malformed
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.LoginRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	sess, err := h.authService.Login(r.Context(), service.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.RespondServiceError(w, err, "failed to log in")
		return
	}

	response.RespondJSON(w, http.StatusOK, model.LoginResponse{
		SessionID: sess.ID(),
		Email:     sess.Email(),
	})
}

// Logout handles POST requests to end the current session. The user's saved
// data is cleared unless the query parameter keep=true is given.
//
// Endpoint: POST /api/auth/logout
// Response: 204 No Content
// Error: 400 Bad Request if keep is not a boolean
// Error: 500 Internal Server Error if the saved data cannot be cleared
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	keep := false
	if raw := r.URL.Query().Get("keep"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid keep parameter", err.Error())
			return
		}
		keep = v
	}

	if err := h.authService.Logout(r.Context(), sess, keep); err != nil {
		response.RespondServiceError(w, err, "failed to log out")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// LastEmail handles GET requests for the email used at the last login, used
// to pre-fill the login form.
//
// Endpoint: GET /api/auth/last-email
// Response: 200 OK with {"email": "..."}
func (h *AuthHandler) LastEmail(w http.ResponseWriter, r *http.Request) {
	email, err := h.authService.LastEmail(r.Context())
	if err != nil {
		response.RespondServiceError(w, err, "failed to load last email")
		return
	}

	response.RespondJSON(w, http.StatusOK, model.User{Email: email})
}
