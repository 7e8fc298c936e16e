package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/filter"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/mfapi"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/validation"
)

// Catalog is one successful load of the fund list. It is immutable once built.
type Catalog struct {
	Funds    []model.Fund
	Options  model.FilterOptions
	Version  int64
	LoadedAt time.Time

	byCode map[int]int
}

// Lookup returns the fund with the given scheme code.
func (c *Catalog) Lookup(code int) (model.Fund, bool) {
	if c == nil {
		return model.Fund{}, false
	}
	idx, ok := c.byCode[code]
	if !ok {
		return model.Fund{}, false
	}
	return c.Funds[idx], true
}

// LookupCode is Lookup for a scheme code in string form.
func (c *Catalog) LookupCode(code string) (model.Fund, error) {
	n, err := validation.ValidateSchemeCode(code)
	if err != nil {
		return model.Fund{}, err
	}
	f, ok := c.Lookup(n)
	if !ok {
		return model.Fund{}, fmt.Errorf("%w: scheme %d", apperrors.ErrFundNotFound, n)
	}
	return f, nil
}

// CatalogService loads and caches the fund list. Concurrent loads share a
// single upstream request.
type CatalogService struct {
	gateway mfapi.Client
	log     zerolog.Logger
	now     func() time.Time

	group singleflight.Group

	mu      sync.RWMutex
	current *Catalog
	version int64
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(gateway mfapi.Client, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		gateway: gateway,
		log:     log,
		now:     time.Now,
	}
}

// Current returns the loaded catalog, loading it on first use.
func (s *CatalogService) Current(ctx context.Context) (*Catalog, error) {
	s.mu.RLock()
	c := s.current
	s.mu.RUnlock()
	if c != nil {
		return c, nil
	}
	return s.load(ctx)
}

// Loaded returns the catalog if one has been loaded.
func (s *CatalogService) Loaded() (*Catalog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// Reload fetches the fund list again regardless of the cached catalog.
func (s *CatalogService) Reload(ctx context.Context) (*Catalog, error) {
	return s.load(ctx)
}

func (s *CatalogService) load(ctx context.Context) (*Catalog, error) {
	ch := s.group.DoChan("catalog", func() (interface{}, error) {
		// A caller giving up must not abort the load shared with others.
		funds, err := s.gateway.FetchAllFunds(context.WithoutCancel(ctx))
		if err != nil {
			s.log.Error().Err(err).Msg("failed to load fund catalog")
			return nil, fmt.Errorf("%w: %w", apperrors.ErrCatalogUnavailable, err)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.version++
		c := buildCatalog(funds, s.version, s.now())
		s.current = c

		s.log.Info().
			Int("funds", len(c.Funds)).
			Int64("version", c.Version).
			Msg("fund catalog loaded")
		return c, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Catalog), nil
	}
}

func buildCatalog(funds []model.Fund, version int64, loadedAt time.Time) *Catalog {
	c := &Catalog{
		Funds:    make([]model.Fund, 0, len(funds)),
		Version:  version,
		LoadedAt: loadedAt,
		byCode:   make(map[int]int, len(funds)),
	}
	for _, f := range funds {
		if _, dup := c.byCode[f.SchemeCode]; dup {
			continue
		}
		c.byCode[f.SchemeCode] = len(c.Funds)
		c.Funds = append(c.Funds, f)
	}
	c.Options = filter.Options(c.Funds)
	return c
}
