package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/config"
)

var internalTestLimits = config.LimitsConfig{SelectionCap: 4, FavoritesCap: 5, SearchHistoryLimit: 10}

func newIdleScheduler(t *testing.T) *RefreshScheduler {
	t.Helper()
	sched := NewRefreshScheduler(time.Hour, func(context.Context, *Session) error { return nil }, zerolog.Nop())
	sched.Start()
	t.Cleanup(func() { sched.Stop(context.Background()) })
	return sched
}

// TestRefreshScheduler_Entries tests that watches never leave a cron entry behind.
//
// WHY: an entry that is no longer in the watch map keeps refreshing forever
// and Unwatch can never reach it.
func TestRefreshScheduler_Entries(t *testing.T) {
	ctx := context.Background()

	t.Run("concurrent watches of one session leave one entry", func(t *testing.T) {
		sched := newIdleScheduler(t)
		sessions := NewSessionManager(nil, internalTestLimits, nil, zerolog.Nop())
		sess := sessions.Create("concurrent@example.com")

		for round := 0; round < 50; round++ {
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, sched.Watch(sess))
				}()
			}
			wg.Wait()

			assert.Len(t, sched.cron.Entries(), 1)
			assert.True(t, sched.Unwatch(sess.ID()))
			require.Empty(t, sched.cron.Entries(), "round %d leaked an entry", round)
		}
	})

	t.Run("closed session is rejected", func(t *testing.T) {
		sched := newIdleScheduler(t)
		sessions := NewSessionManager(nil, internalTestLimits, nil, zerolog.Nop())
		sess := sessions.Create("closed@example.com")
		sess.Close()

		err := sched.Watch(sess)

		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
		assert.False(t, sched.Watching(sess.ID()))
		assert.Empty(t, sched.cron.Entries())
	})

	t.Run("watch racing logout leaves no entry", func(t *testing.T) {
		sched := newIdleScheduler(t)
		sessions := NewSessionManager(nil, internalTestLimits, nil, zerolog.Nop())
		auth := NewAuthService(sessions, nil, sched, zerolog.Nop())

		for round := 0; round < 50; round++ {
			sess := sessions.Create("race@example.com")

			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				_ = sched.Watch(sess)
			}()
			go func() {
				defer wg.Done()
				assert.NoError(t, auth.Logout(ctx, sess, true))
			}()
			wg.Wait()

			require.Empty(t, sched.cron.Entries(), "round %d leaked an entry", round)
			assert.False(t, sched.Watching(sess.ID()))
		}
	})

	t.Run("stop removes scheduled jobs", func(t *testing.T) {
		sched := NewRefreshScheduler(time.Hour, func(context.Context, *Session) error { return nil }, zerolog.Nop())
		require.NoError(t, sched.Every(time.Minute, "noop", func(context.Context) {}))
		assert.Len(t, sched.cron.Entries(), 1)

		sched.Stop(ctx)

		assert.Empty(t, sched.cron.Entries())
	})
}
