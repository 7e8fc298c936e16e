package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/config"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
)

// EventType names a change of session state.
type EventType string

// Session events.
const (
	EventSelectionChanged EventType = "selection_changed"
	EventFavoritesChanged EventType = "favorites_changed"
	EventFiltersChanged   EventType = "filters_changed"
	EventNAVUpdated       EventType = "nav_updated"
	EventRestored         EventType = "restored"
)

// NAVView names the view a NAV request serves. Each view has its own request
// generation, so a favorites fetch never supersedes a comparison refresh.
type NAVView int

// NAV views.
const (
	NAVComparison NAVView = iota
	NAVFavorites
)

type cachedNAV struct {
	history   model.NAVResponse
	fetchedAt time.Time
}

// Event is delivered to session observers after a state change.
type Event struct {
	Type      EventType
	SessionID string
	At        time.Time
}

// Session is the state of one logged-in user: the comparison selection, the
// favorites, the current filters and the cached NAV histories. All mutations
// go through its methods, which persist the change and notify observers.
// A Session is safe for concurrent use.
type Session struct {
	id        string
	email     string
	createdAt time.Time
	prefs     *PreferenceService
	log       zerolog.Logger

	mu              sync.Mutex
	selection       *FundSet
	favorites       *FundSet
	filters         model.FundFilters
	nav             map[string]cachedNAV
	navGeneration   map[NAVView]uint64
	lastSeen        time.Time
	restoredVersion int64
	observers       map[int]func(Event)
	nextObserver    int
	closed          bool
}

// NewSession creates the state of a user. Preferences are read and written
// through prefs.
func NewSession(id, email string, prefs *PreferenceService, limits config.LimitsConfig, log zerolog.Logger) *Session {
	now := time.Now()
	s := &Session{
		id:            id,
		email:         email,
		createdAt:     now,
		lastSeen:      now,
		prefs:         prefs,
		log:           log.With().Str("session_id", id).Logger(),
		nav:           make(map[string]cachedNAV),
		navGeneration: make(map[NAVView]uint64),
		observers:     make(map[int]func(Event)),
	}
	s.selection = NewFundSet(limits.SelectionCap, apperrors.ErrSelectionLimitReached, prefs.SaveSelectedFunds)
	s.favorites = NewFundSet(limits.FavoritesCap, apperrors.ErrFavoritesLimitReached, prefs.SaveFavoriteFunds)
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Email returns the email the user logged in with.
func (s *Session) Email() string { return s.email }

// CreatedAt returns the login time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Touch records activity on the session at t.
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.After(s.lastSeen) {
		s.lastSeen = t
	}
}

// LastSeen returns the time of the last recorded activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Preferences returns the user's preference service.
func (s *Session) Preferences() *PreferenceService { return s.prefs }

// Subscribe registers fn for every subsequent event. The returned function
// removes the registration.
func (s *Session) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// RestoreFrom restores the selection, favorites and last filters against
// catalog. It runs at most once per catalog version and reports whether it
// ran. Preferences that cannot be read are logged and treated as empty.
func (s *Session) RestoreFrom(ctx context.Context, catalog *Catalog) bool {
	s.mu.Lock()
	if s.closed || catalog == nil || s.restoredVersion == catalog.Version {
		s.mu.Unlock()
		return false
	}

	selected, err := s.prefs.SelectedFundCodes(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load saved selection")
	}
	favorites, err := s.prefs.FavoriteFundCodes(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load saved favorites")
	}
	filters, err := s.prefs.LastFilters(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load saved filters")
	}

	s.selection.Restore(catalog.Funds, selected)
	s.favorites.Restore(catalog.Funds, favorites)
	s.filters = filters
	s.restoredVersion = catalog.Version

	s.log.Debug().
		Int64("catalog_version", catalog.Version).
		Int("selected", s.selection.Len()).
		Int("favorites", s.favorites.Len()).
		Msg("session restored")

	notify := s.collect()
	s.mu.Unlock()

	s.emit(notify, EventRestored)
	return true
}

// RestoredVersion returns the catalog version the session was last restored against.
func (s *Session) RestoredVersion() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restoredVersion
}

// AddSelection adds f to the comparison selection.
func (s *Session) AddSelection(ctx context.Context, f model.Fund) error {
	return s.mutate(EventSelectionChanged, func() (bool, error) {
		if s.selection.Contains(f) {
			return false, nil
		}
		return true, s.selection.Add(ctx, f)
	})
}

// RemoveSelection removes f from the comparison selection.
func (s *Session) RemoveSelection(ctx context.Context, f model.Fund) error {
	return s.mutate(EventSelectionChanged, func() (bool, error) {
		changed := s.selection.Contains(f)
		return changed, s.selection.Remove(ctx, f)
	})
}

// ToggleSelection flips the membership of f in the comparison selection.
func (s *Session) ToggleSelection(ctx context.Context, f model.Fund) (member bool, err error) {
	err = s.mutate(EventSelectionChanged, func() (bool, error) {
		var terr error
		member, terr = s.selection.Toggle(ctx, f)
		return true, terr
	})
	return member, err
}

// AddFavorite adds f to the favorites.
func (s *Session) AddFavorite(ctx context.Context, f model.Fund) error {
	return s.mutate(EventFavoritesChanged, func() (bool, error) {
		if s.favorites.Contains(f) {
			return false, nil
		}
		return true, s.favorites.Add(ctx, f)
	})
}

// RemoveFavorite removes f from the favorites.
func (s *Session) RemoveFavorite(ctx context.Context, f model.Fund) error {
	return s.mutate(EventFavoritesChanged, func() (bool, error) {
		changed := s.favorites.Contains(f)
		return changed, s.favorites.Remove(ctx, f)
	})
}

// ToggleFavorite flips the membership of f in the favorites.
func (s *Session) ToggleFavorite(ctx context.Context, f model.Fund) (member bool, err error) {
	err = s.mutate(EventFavoritesChanged, func() (bool, error) {
		var terr error
		member, terr = s.favorites.Toggle(ctx, f)
		return true, terr
	})
	return member, err
}

// ApplyFilters makes filters current, persists them and records a non-empty
// search text in the search history.
func (s *Session) ApplyFilters(ctx context.Context, filters model.FundFilters) error {
	return s.mutate(EventFiltersChanged, func() (bool, error) {
		s.filters = filters
		return true, s.prefs.SaveSearch(ctx, filters)
	})
}

// Filters returns the current filters.
func (s *Session) Filters() model.FundFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// SelectedFunds returns the selection in insertion order.
func (s *Session) SelectedFunds() []model.Fund {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Funds()
}

// SelectedCodes returns the scheme codes of the selection.
func (s *Session) SelectedCodes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Codes()
}

// FavoriteFunds returns the favorites in insertion order.
func (s *Session) FavoriteFunds() []model.Fund {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.Funds()
}

// FavoriteCodes returns the scheme codes of the favorites.
func (s *Session) FavoriteCodes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.Codes()
}

// IsSelected reports whether the scheme is in the selection.
func (s *Session) IsSelected(code int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.ContainsCode(code)
}

// IsFavorite reports whether the scheme is a favorite.
func (s *Session) IsFavorite(code int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.ContainsCode(code)
}

// SelectionCap returns the selection capacity.
func (s *Session) SelectionCap() int { return s.selection.Cap() }

// FavoritesCap returns the favorites capacity.
func (s *Session) FavoritesCap() int { return s.favorites.Cap() }

// CanAddFavorite reports whether the favorites list has room.
func (s *Session) CanAddFavorite() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.favorites.Full()
}

// CanCompare reports whether the selection holds between two funds and the cap.
func (s *Session) CanCompare() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.selection.Len()
	return n >= 2 && n <= s.selection.Cap()
}

// BeginNAVRequest starts a NAV fetch for view and returns its generation.
// Only the results of the latest generation of the view are accepted by SetNAV.
func (s *Session) BeginNAVRequest(view NAVView) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navGeneration[view]++
	return s.navGeneration[view]
}

// SetNAV stores the histories fetched by the request of generation gen of
// view. Results of an older generation, or arriving after Close, are
// discarded and SetNAV returns false. Cached histories of schemes that are
// neither selected nor favorite are evicted.
func (s *Session) SetNAV(view NAVView, gen uint64, histories map[string]model.NAVResponse) bool {
	s.mu.Lock()
	if s.closed || gen != s.navGeneration[view] {
		s.mu.Unlock()
		s.log.Debug().Int("view", int(view)).Uint64("generation", gen).Msg("discarding stale NAV results")
		return false
	}

	now := time.Now()
	for code, h := range histories {
		s.nav[code] = cachedNAV{history: h, fetchedAt: now}
	}
	for code := range s.nav {
		if !s.tracked(code) {
			delete(s.nav, code)
		}
	}

	notify := s.collect()
	s.mu.Unlock()

	s.emit(notify, EventNAVUpdated)
	return true
}

// CachedNAV returns the cached histories of codes when every one of them was
// fetched less than maxAge ago, along with the oldest fetch time. It reports
// false otherwise.
func (s *Session) CachedNAV(codes []string, maxAge time.Duration) (map[string]model.NAVResponse, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if maxAge <= 0 || len(codes) == 0 {
		return nil, time.Time{}, false
	}

	now := time.Now()
	out := make(map[string]model.NAVResponse, len(codes))
	var oldest time.Time
	for _, code := range codes {
		c, ok := s.nav[code]
		if !ok || now.Sub(c.fetchedAt) >= maxAge {
			return nil, time.Time{}, false
		}
		if oldest.IsZero() || c.fetchedAt.Before(oldest) {
			oldest = c.fetchedAt
		}
		out[code] = c.history
	}
	return out, oldest, true
}

// Close drops observers and cached data. Later NAV results are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for view := range s.navGeneration {
		s.navGeneration[view]++
	}
	s.observers = make(map[int]func(Event))
	s.nav = make(map[string]cachedNAV)
}

// ResetState empties the selection, favorites and filters without persisting.
func (s *Session) ResetState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Clear()
	s.favorites.Clear()
	s.filters = model.FundFilters{}
}

func (s *Session) tracked(code string) bool {
	for _, c := range s.selection.Codes() {
		if c == code {
			return true
		}
	}
	for _, c := range s.favorites.Codes() {
		if c == code {
			return true
		}
	}
	return false
}

// mutate runs fn under the lock and emits ev when fn reports a change
// without error.
func (s *Session) mutate(ev EventType, fn func() (changed bool, err error)) error {
	s.mu.Lock()
	changed, err := fn()
	var notify []func(Event)
	if changed && err == nil {
		notify = s.collect()
	}
	s.mu.Unlock()

	if changed && err == nil {
		s.emit(notify, ev)
	}
	return err
}

func (s *Session) collect() []func(Event) {
	out := make([]func(Event), 0, len(s.observers))
	for _, fn := range s.observers {
		out = append(out, fn)
	}
	return out
}

func (s *Session) emit(observers []func(Event), t EventType) {
	if len(observers) == 0 {
		return
	}
	ev := Event{Type: t, SessionID: s.id, At: time.Now()}
	for _, fn := range observers {
		fn(ev)
	}
}
