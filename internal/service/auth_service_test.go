package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/service"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/testutil"
)

// TestAuthService_Validate tests the login form rules.
//
// WHY: login is the gate to every other screen; the accepted formats must
// stay exactly the documented ones.
func TestAuthService_Validate(t *testing.T) {
	svcs := testutil.NewTestServices(t, testutil.NewMockGateway())

	tests := []struct {
		name    string
		creds   service.Credentials
		wantErr bool
	}{
		{"valid", service.Credentials{Email: "user@example.com", Password: "secret"}, false},
		{"plus and dots", service.Credentials{Email: "first.last+mf@mail.example.in", Password: "123456"}, false},
		{"missing email", service.Credentials{Password: "secret"}, true},
		{"no domain dot", service.Credentials{Email: "user@localhost", Password: "secret"}, true},
		{"one letter tld", service.Credentials{Email: "user@example.c", Password: "secret"}, true},
		{"short password", service.Credentials{Email: "user@example.com", Password: "12345"}, true},
		{"missing password", service.Credentials{Email: "user@example.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svcs.Auth.Validate(tt.creds)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthService_LoginLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("login records the last email", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())

		sess, err := svcs.Auth.Login(ctx, service.Credentials{Email: " user@example.com ", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", sess.Email())

		got, err := svcs.Sessions.Get(sess.ID())
		require.NoError(t, err)
		assert.Same(t, sess, got)

		last, err := svcs.Auth.LastEmail(ctx)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", last)
	})

	t.Run("invalid login creates no session", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())

		_, err := svcs.Auth.Login(ctx, service.Credentials{Email: "nope", Password: "secret"})

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		assert.Equal(t, 0, svcs.Sessions.Len())
	})

	t.Run("logout drops the session, its watch and its data", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())
		sess, err := svcs.Auth.Login(ctx, service.Credentials{Email: "bye@example.com", Password: "secret"})
		require.NoError(t, err)
		require.NoError(t, svcs.Funds.AddFavorite(ctx, sess, "120503"))
		require.NoError(t, svcs.Scheduler.Watch(sess))

		require.NoError(t, svcs.Auth.Logout(ctx, sess, false))

		_, err = svcs.Sessions.Get(sess.ID())
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
		assert.False(t, svcs.Scheduler.Watching(sess.ID()))

		favorites, err := sess.Preferences().FavoriteFundCodes(ctx)
		require.NoError(t, err)
		assert.Empty(t, favorites)

		last, err := svcs.Auth.LastEmail(ctx)
		require.NoError(t, err)
		assert.Equal(t, "bye@example.com", last)
	})

	t.Run("logout keeping preferences restores them on next login", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())
		creds := service.Credentials{Email: "back@example.com", Password: "secret"}
		sess, err := svcs.Auth.Login(ctx, creds)
		require.NoError(t, err)
		require.NoError(t, svcs.Funds.AddFavorite(ctx, sess, "120503"))

		require.NoError(t, svcs.Auth.Logout(ctx, sess, true))
		again, err := svcs.Auth.Login(ctx, creds)
		require.NoError(t, err)

		resp, err := svcs.Funds.Favorites(ctx, again)
		require.NoError(t, err)
		require.Len(t, resp.Funds, 1)
		assert.Equal(t, testutil.AxisELSS, resp.Funds[0].SchemeCode)
	})

	t.Run("malformed session id", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())

		_, err := svcs.Sessions.Get("not-a-uuid")

		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})
}

// TestAuthService_ExpireIdle tests the idle session sweep.
//
// WHY: a user who never logs out must not keep a session, its NAV cache and
// its auto refresh alive for the life of the process.
func TestAuthService_ExpireIdle(t *testing.T) {
	ctx := context.Background()

	t.Run("expires idle sessions and stops their refresh", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())
		idle, err := svcs.Auth.Login(ctx, service.Credentials{Email: "idle@example.com", Password: "secret"})
		require.NoError(t, err)
		active, err := svcs.Auth.Login(ctx, service.Credentials{Email: "active@example.com", Password: "secret"})
		require.NoError(t, err)
		require.NoError(t, svcs.Scheduler.Watch(idle))
		active.Touch(time.Now().Add(time.Hour))
		time.Sleep(5 * time.Millisecond)

		expired := svcs.Auth.ExpireIdle(time.Millisecond)

		assert.Equal(t, 1, expired)
		assert.True(t, idle.Closed())
		assert.False(t, svcs.Scheduler.Watching(idle.ID()))
		_, err = svcs.Sessions.Get(idle.ID())
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

		_, err = svcs.Sessions.Get(active.ID())
		assert.NoError(t, err)
		assert.Equal(t, 1, svcs.Sessions.Len())
	})

	t.Run("zero ttl keeps every session", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())
		sess := svcs.NewTestSession(t, "keep@example.com")

		assert.Zero(t, svcs.Auth.ExpireIdle(0))
		assert.False(t, sess.Closed())
	})

	t.Run("get records activity", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())
		sess := svcs.NewTestSession(t, "seen@example.com")
		time.Sleep(5 * time.Millisecond)

		_, err := svcs.Sessions.Get(sess.ID())
		require.NoError(t, err)

		assert.True(t, sess.LastSeen().After(sess.CreatedAt()))
	})

	t.Run("expired session cannot be watched", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())
		sess := svcs.NewTestSession(t, "late@example.com")
		time.Sleep(5 * time.Millisecond)
		require.Equal(t, 1, svcs.Auth.ExpireIdle(time.Millisecond))

		err := svcs.Scheduler.Watch(sess)

		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})
}
