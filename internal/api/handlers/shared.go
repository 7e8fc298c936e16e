package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/middleware"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/response"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/service"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/validation"
)

const maxBodyBytes = 1 << 16

// parseJSON decodes the request body into a T. Unknown fields are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode request body: %w", err)
	}
	return v, nil
}

// currentSession returns the session placed in the context by
// middleware.RequireSession, answering 401 when it is missing.
func currentSession(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, "session required", "")
		return nil, false
	}
	return sess, true
}

func parseSchemeCode(code string) (int, error) {
	return validation.ValidateSchemeCode(code)
}
