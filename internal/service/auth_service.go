package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,appemail"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthService logs users in and out. Any well-formed email and password of at
// least six characters is accepted; there is no account database.
type AuthService struct {
	validate  *validator.Validate
	sessions  *SessionManager
	global    *PreferenceService
	scheduler *RefreshScheduler
	log       zerolog.Logger
}

// NewAuthService creates an AuthService. global stores the last email used
// to log in; scheduler may be nil.
func NewAuthService(sessions *SessionManager, global *PreferenceService, scheduler *RefreshScheduler, log zerolog.Logger) *AuthService {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("appemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})

	return &AuthService{
		validate:  v,
		sessions:  sessions,
		global:    global,
		scheduler: scheduler,
		log:       log,
	}
}

// Validate checks the credentials and returns ErrInvalidCredentials with the
// failing fields.
func (s *AuthService) Validate(c Credentials) error {
	err := s.validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidCredentials, strings.Join(msgs, "; "))
}

// Login validates the credentials, records the email for the next login
// and starts a session.
func (s *AuthService) Login(ctx context.Context, c Credentials) (*Session, error) {
	c.Email = strings.TrimSpace(c.Email)
	if err := s.Validate(c); err != nil {
		return nil, err
	}

	sess := s.sessions.Create(c.Email)

	if err := sess.Preferences().SaveUserEmail(ctx, c.Email); err != nil {
		s.log.Warn().Err(err).Msg("failed to save user email")
	}
	if s.global != nil {
		if err := s.global.SaveUserEmail(ctx, c.Email); err != nil {
			s.log.Warn().Err(err).Msg("failed to save last login email")
		}
	}
	return sess, nil
}

// Logout drops the session, stops its auto refresh and, unless
// keepPreferences is set, clears the user's persisted data. The session is
// closed before the watch is removed so a concurrent Watch cannot outlive it.
func (s *AuthService) Logout(ctx context.Context, sess *Session, keepPreferences bool) error {
	s.sessions.Remove(sess.ID())
	sess.Close()
	if s.scheduler != nil {
		s.scheduler.Unwatch(sess.ID())
	}
	sess.ResetState()

	if keepPreferences {
		return nil
	}
	return sess.Preferences().ClearAll(ctx)
}

// ExpireIdle expires the sessions idle for ttl or longer and stops their
// auto refresh. It returns the number of expired sessions.
func (s *AuthService) ExpireIdle(ttl time.Duration) int {
	ids := s.sessions.ExpireIdle(ttl)
	if s.scheduler != nil {
		for _, id := range ids {
			s.scheduler.Unwatch(id)
		}
	}
	return len(ids)
}

// LastEmail returns the email of the most recent login, or "".
func (s *AuthService) LastEmail(ctx context.Context) (string, error) {
	if s.global == nil {
		return "", nil
	}
	return s.global.UserEmail(ctx)
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "appemail":
		return field + " is not a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
