package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/classifier"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/filter"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/validation"
)

// NotAvailable is shown in place of a NAV the gateway could not provide.
const NotAvailable = "N/A"

// FundService implements the fund explorer operations of a session: browsing
// the catalog, managing the selection and favorites, and the comparison view.
type FundService struct {
	catalog  *CatalogService
	nav      *NAVService
	cacheTTL time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewFundService creates a FundService. NAV histories cached by a session
// are served for cacheTTL after they were fetched; zero disables the cache.
func NewFundService(catalog *CatalogService, nav *NAVService, cacheTTL time.Duration, log zerolog.Logger) *FundService {
	return &FundService{
		catalog:  catalog,
		nav:      nav,
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
	}
}

// Describe returns f with the attributes derived from its name.
func Describe(f model.Fund) model.FundView {
	attrs := classifier.Classify(f.SchemeName)
	return model.FundView{
		Fund:           f,
		FundHouse:      attrs.FundHouse,
		SchemeType:     attrs.SchemeType,
		SchemeCategory: attrs.SchemeCategory,
	}
}

// ListFunds returns the catalog narrowed by filters with the selected funds
// first. A nil filters uses the session's current filters, which are the
// last saved ones after a restore. ListFunds saves nothing.
func (s *FundService) ListFunds(ctx context.Context, sess *Session, filters *model.FundFilters) ([]model.FundView, error) {
	catalog, err := s.session(ctx, sess)
	if err != nil {
		return nil, err
	}

	spec := sess.Filters()
	if filters != nil {
		spec = *filters
	}
	return s.list(sess, catalog, spec), nil
}

// ApplyFilters makes filters the session's current filters, saves them with
// the search text in the search history, and returns the narrowed catalog.
// A failed save is logged and the listing is still returned.
func (s *FundService) ApplyFilters(ctx context.Context, sess *Session, filters model.FundFilters) ([]model.FundView, error) {
	catalog, err := s.session(ctx, sess)
	if err != nil {
		return nil, err
	}

	if err := sess.ApplyFilters(ctx, filters); err != nil {
		s.log.Warn().Err(err).Msg("failed to save filters")
	}
	return s.list(sess, catalog, filters), nil
}

func (s *FundService) list(sess *Session, catalog *Catalog, spec model.FundFilters) []model.FundView {
	matched := filter.Filter(catalog.Funds, spec)
	ordered := filter.SelectedFirst(matched, func(f model.Fund) bool {
		return sess.IsSelected(f.SchemeCode)
	})
	return s.views(sess, ordered)
}

// Options returns the values available to each filter.
func (s *FundService) Options(ctx context.Context) (model.FilterOptions, error) {
	catalog, err := s.catalog.Current(ctx)
	if err != nil {
		return model.FilterOptions{}, err
	}
	return catalog.Options, nil
}

// Reload fetches the catalog again and restores the session against it.
func (s *FundService) Reload(ctx context.Context, sess *Session) (*Catalog, error) {
	catalog, err := s.catalog.Reload(ctx)
	if err != nil {
		return nil, err
	}
	sess.RestoreFrom(ctx, catalog)
	return catalog, nil
}

// Selection returns the comparison selection.
func (s *FundService) Selection(ctx context.Context, sess *Session) (model.SelectionResponse, error) {
	if _, err := s.session(ctx, sess); err != nil {
		return model.SelectionResponse{}, err
	}
	return model.SelectionResponse{
		Funds:      s.views(sess, sess.SelectedFunds()),
		Cap:        sess.SelectionCap(),
		CanCompare: sess.CanCompare(),
	}, nil
}

// AddToSelection adds the scheme to the comparison selection.
func (s *FundService) AddToSelection(ctx context.Context, sess *Session, code string) error {
	f, err := s.lookup(ctx, sess, code)
	if err != nil {
		return err
	}
	return sess.AddSelection(ctx, f)
}

// RemoveFromSelection removes the scheme from the comparison selection.
func (s *FundService) RemoveFromSelection(ctx context.Context, sess *Session, code string) error {
	f, err := s.lookup(ctx, sess, code)
	if err != nil {
		return err
	}
	return sess.RemoveSelection(ctx, f)
}

// ToggleSelection flips the scheme's membership in the comparison selection.
func (s *FundService) ToggleSelection(ctx context.Context, sess *Session, code string) (model.ToggleResponse, error) {
	f, err := s.lookup(ctx, sess, code)
	if err != nil {
		return model.ToggleResponse{}, err
	}
	member, err := sess.ToggleSelection(ctx, f)
	if err != nil {
		return model.ToggleResponse{}, err
	}
	return model.ToggleResponse{SchemeCode: f.SchemeCode, Member: member}, nil
}

// Favorites returns the favorites sorted by scheme name, each with its latest
// NAV or NotAvailable.
func (s *FundService) Favorites(ctx context.Context, sess *Session) (model.FavoritesResponse, error) {
	if _, err := s.session(ctx, sess); err != nil {
		return model.FavoritesResponse{}, err
	}

	funds := sess.FavoriteFunds()
	histories, _, err := s.histories(ctx, sess, NAVFavorites, sess.FavoriteCodes())
	if err != nil {
		return model.FavoritesResponse{}, err
	}

	sort.SliceStable(funds, func(i, j int) bool {
		return funds[i].SchemeName < funds[j].SchemeName
	})

	out := make([]model.FavoriteFund, 0, len(funds))
	available := 0
	for _, f := range funds {
		latest := NotAvailable
		if h, ok := histories[f.Code()]; ok && len(h.Data) > 0 {
			latest = LatestNAV(h.Data)
			available++
		}
		out = append(out, model.FavoriteFund{FundView: s.view(sess, f), LatestNAV: latest})
	}

	return model.FavoritesResponse{
		Funds:        out,
		Cap:          sess.FavoritesCap(),
		CanAddMore:   sess.CanAddFavorite(),
		NAVAvailable: available,
	}, nil
}

// AddFavorite adds the scheme to the favorites.
func (s *FundService) AddFavorite(ctx context.Context, sess *Session, code string) error {
	f, err := s.lookup(ctx, sess, code)
	if err != nil {
		return err
	}
	return sess.AddFavorite(ctx, f)
}

// RemoveFavorite removes the scheme from the favorites.
func (s *FundService) RemoveFavorite(ctx context.Context, sess *Session, code string) error {
	f, err := s.lookup(ctx, sess, code)
	if err != nil {
		return err
	}
	return sess.RemoveFavorite(ctx, f)
}

// ToggleFavorite flips the scheme's membership in the favorites.
func (s *FundService) ToggleFavorite(ctx context.Context, sess *Session, code string) (model.ToggleResponse, error) {
	f, err := s.lookup(ctx, sess, code)
	if err != nil {
		return model.ToggleResponse{}, err
	}
	member, err := sess.ToggleFavorite(ctx, f)
	if err != nil {
		return model.ToggleResponse{}, err
	}
	return model.ToggleResponse{SchemeCode: f.SchemeCode, Member: member}, nil
}

// Compare builds the comparison cards of the selection in selection order.
// Histories cached by the session, including those of an auto refresh, are
// used while fresh; otherwise they are fetched. Funds without data get an
// empty card.
func (s *FundService) Compare(ctx context.Context, sess *Session) (model.ComparisonResult, error) {
	if _, err := s.session(ctx, sess); err != nil {
		return model.ComparisonResult{}, err
	}
	if !sess.CanCompare() {
		return model.ComparisonResult{}, fmt.Errorf("%w: select between 2 and %d funds",
			apperrors.ErrNotEnoughFunds, sess.SelectionCap())
	}

	funds := sess.SelectedFunds()
	histories, updatedAt, err := s.histories(ctx, sess, NAVComparison, sess.SelectedCodes())
	if err != nil {
		return model.ComparisonResult{}, err
	}

	cards := make([]model.Comparison, 0, len(funds))
	for _, f := range funds {
		var history *model.NAVResponse
		if h, ok := histories[f.Code()]; ok {
			history = &h
		}
		cards = append(cards, BuildComparison(s.view(sess, f), history))
	}
	return model.ComparisonResult{Funds: cards, UpdatedAt: updatedAt.UTC()}, nil
}

// RefreshNAV re-fetches the NAV histories of the selection into the session
// cache. It is the job run by the RefreshScheduler.
func (s *FundService) RefreshNAV(ctx context.Context, sess *Session) error {
	_, err := s.fetchNAV(ctx, sess, NAVComparison, sess.SelectedCodes())
	return err
}

// FundNAV returns the NAV history of one scheme, most recent first.
func (s *FundService) FundNAV(ctx context.Context, code string) (model.NAVResponse, error) {
	n, err := validation.ValidateSchemeCode(code)
	if err != nil {
		return model.NAVResponse{}, err
	}
	return s.nav.FetchOne(ctx, strconv.Itoa(n))
}

// session loads the catalog and restores the session against it once per
// catalog version.
func (s *FundService) session(ctx context.Context, sess *Session) (*Catalog, error) {
	catalog, err := s.catalog.Current(ctx)
	if err != nil {
		return nil, err
	}
	sess.RestoreFrom(ctx, catalog)
	return catalog, nil
}

func (s *FundService) lookup(ctx context.Context, sess *Session, code string) (model.Fund, error) {
	catalog, err := s.session(ctx, sess)
	if err != nil {
		return model.Fund{}, err
	}
	return catalog.LookupCode(code)
}

// histories returns the session's cached histories of codes when they are
// all fresh, and fetches them otherwise. The returned time is when the
// oldest history was fetched.
func (s *FundService) histories(ctx context.Context, sess *Session, view NAVView, codes []string) (map[string]model.NAVResponse, time.Time, error) {
	if cached, at, ok := sess.CachedNAV(codes, s.cacheTTL); ok {
		return cached, at, nil
	}
	fetched, err := s.fetchNAV(ctx, sess, view, codes)
	if err != nil {
		return nil, time.Time{}, err
	}
	return fetched, s.now(), nil
}

// fetchNAV fetches the histories of codes and offers them to the session
// cache. The fetched map is returned even when a newer request of the same
// view superseded it.
func (s *FundService) fetchNAV(ctx context.Context, sess *Session, view NAVView, codes []string) (map[string]model.NAVResponse, error) {
	gen := sess.BeginNAVRequest(view)
	histories, err := s.nav.FetchMany(ctx, codes)
	if err != nil {
		return nil, err
	}
	sess.SetNAV(view, gen, histories)
	return histories, nil
}

func (s *FundService) views(sess *Session, funds []model.Fund) []model.FundView {
	out := make([]model.FundView, 0, len(funds))
	for _, f := range funds {
		out = append(out, s.view(sess, f))
	}
	return out
}

func (s *FundService) view(sess *Session, f model.Fund) model.FundView {
	v := Describe(f)
	v.Selected = sess.IsSelected(f.SchemeCode)
	v.Favorite = sess.IsFavorite(f.SchemeCode)
	return v
}
