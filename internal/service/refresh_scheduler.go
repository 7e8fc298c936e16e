package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
)

// RefreshFunc re-fetches the comparison NAVs of a session.
type RefreshFunc func(ctx context.Context, sess *Session) error

// RefreshScheduler periodically refreshes the comparison NAVs of the sessions
// that have an active comparison view.
type RefreshScheduler struct {
	cron     *cron.Cron
	interval time.Duration
	refresh  RefreshFunc
	log      zerolog.Logger

	mu      sync.Mutex
	watches map[string]*watch
	jobs    []scheduledJob
}

type watch struct {
	entry   cron.EntryID
	session *Session
	ctx     context.Context
	cancel  context.CancelFunc
}

type scheduledJob struct {
	entry  cron.EntryID
	cancel context.CancelFunc
}

// NewRefreshScheduler creates a scheduler running refresh every interval for
// each watched session. Intervals are rounded down to whole seconds, with a
// minimum of one second.
func NewRefreshScheduler(interval time.Duration, refresh RefreshFunc, log zerolog.Logger) *RefreshScheduler {
	return &RefreshScheduler{
		cron:     cron.New(),
		interval: interval,
		refresh:  refresh,
		log:      log,
		watches:  make(map[string]*watch),
	}
}

// Start starts the scheduler
func (s *RefreshScheduler) Start() {
	s.cron.Start()
	s.log.Info().Dur("interval", s.interval).Msg("NAV refresh scheduler started")
}

// Stop cancels every watch and job and waits for running refreshes to return or ctx
// to expire.
func (s *RefreshScheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	for id, w := range s.watches {
		s.cron.Remove(w.entry)
		w.cancel()
		delete(s.watches, id)
	}
	for _, j := range s.jobs {
		s.cron.Remove(j.entry)
		j.cancel()
	}
	s.jobs = nil
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn().Msg("NAV refresh scheduler stop timed out")
		return
	}
	s.log.Info().Msg("NAV refresh scheduler stopped")
}

// Watch schedules periodic refreshes for sess, replacing any previous watch.
// A closed session is rejected with ErrSessionNotFound.
func (s *RefreshScheduler) Watch(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.Closed() {
		return fmt.Errorf("%w: session closed", apperrors.ErrSessionNotFound)
	}
	s.unwatchLocked(sess.ID())

	ctx, cancel := context.WithCancel(context.Background())
	w := &watch{session: sess, ctx: ctx, cancel: cancel}

	entry, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		s.run(w)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule NAV refresh: %w", err)
	}
	w.entry = entry
	s.watches[sess.ID()] = w

	s.log.Debug().Str("session_id", sess.ID()).Msg("watching comparison")
	return nil
}

// Unwatch removes the watch of a session and cancels a refresh in flight.
// It reports whether a watch existed.
func (s *RefreshScheduler) Unwatch(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.unwatchLocked(sessionID) {
		return false
	}
	s.log.Debug().Str("session_id", sessionID).Msg("stopped watching comparison")
	return true
}

// unwatchLocked drops the watch of a session. s.mu must be held.
func (s *RefreshScheduler) unwatchLocked(sessionID string) bool {
	w, ok := s.watches[sessionID]
	if !ok {
		return false
	}
	delete(s.watches, sessionID)
	s.cron.Remove(w.entry)
	w.cancel()
	return true
}

// Every runs job on its own schedule next to the NAV refreshes, until Stop.
func (s *RefreshScheduler) Every(interval time.Duration, name string, fn func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	entry, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		start := time.Now()
		fn(ctx)
		s.log.Debug().Str("job", name).Dur("duration", time.Since(start)).Msg("scheduled job completed")
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.jobs = append(s.jobs, scheduledJob{entry: entry, cancel: cancel})
	return nil
}

// Watching reports whether the session is watched.
func (s *RefreshScheduler) Watching(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.watches[sessionID]
	return ok
}

// RunNow refreshes a watched session immediately, outside the schedule.
func (s *RefreshScheduler) RunNow(sessionID string) error {
	s.mu.Lock()
	w, ok := s.watches[sessionID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s is not watched", sessionID)
	}
	return s.run(w)
}

func (s *RefreshScheduler) run(w *watch) error {
	if w.ctx.Err() != nil {
		return w.ctx.Err()
	}

	start := time.Now()
	err := s.refresh(w.ctx, w.session)
	if errors.Is(err, context.Canceled) {
		s.log.Debug().Str("session_id", w.session.ID()).Msg("NAV refresh cancelled")
		return err
	}
	if err != nil {
		s.log.Error().Err(err).Str("session_id", w.session.ID()).Msg("NAV refresh failed")
		return err
	}
	s.log.Debug().
		Str("session_id", w.session.ID()).
		Dur("duration", time.Since(start)).
		Msg("NAV refresh completed")
	return nil
}
