// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"context"
	"net/http"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/response"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/service"
)

// SessionHeader carries the id returned by POST /api/auth/login.
const SessionHeader = "X-Session-ID"

type sessionKey struct{}

// SessionLookup resolves a session id.
type SessionLookup interface {
	Get(id string) (*service.Session, error)
}

// RequireSession rejects requests without a valid session header with 401
// Unauthorized and stores the session in the request context otherwise.
//
// Example usage in router:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(middleware.RequireSession(sessions))
//	    r.Get("/selection", handler.Selection)
//	})
func RequireSession(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				response.RespondError(w, http.StatusUnauthorized, "session required", "missing "+SessionHeader+" header")
				return
			}

			sess, err := sessions.Get(id)
			if err != nil {
				response.RespondError(w, http.StatusUnauthorized, "invalid session", err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *service.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFrom returns the session stored by RequireSession.
func SessionFrom(ctx context.Context) (*service.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(*service.Session)
	return sess, ok && sess != nil
}
