package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/config"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/repository"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/service"
)

// TestLimits are the product limits used by tests.
var TestLimits = config.LimitsConfig{
	SelectionCap:       4,
	FavoritesCap:       5,
	SearchHistoryLimit: 10,
}

// Services bundles the wired services of a test.
type Services struct {
	DB        *sql.DB
	Gateway   *MockGateway
	Store     *repository.PreferenceRepository
	Catalog   *service.CatalogService
	NAV       *service.NAVService
	Funds     *service.FundService
	Sessions  *service.SessionManager
	Global    *service.PreferenceService
	Auth      *service.AuthService
	Scheduler *service.RefreshScheduler
	System    *service.SystemService
}

// NewTestServices wires every service against an in-memory database and the
// given gateway. The refresh scheduler is created but not started.
func NewTestServices(t *testing.T, gateway *MockGateway) *Services {
	t.Helper()

	db := SetupTestDB(t)
	log := zerolog.Nop()
	store := repository.NewPreferenceRepository(db)

	catalog := service.NewCatalogService(gateway, log)
	nav := service.NewNAVService(gateway, 4, log)
	funds := service.NewFundService(catalog, nav, time.Hour, log)
	sessions := service.NewSessionManager(store, TestLimits, nil, log)
	global := service.NewPreferenceService(store, service.GlobalNamespace, TestLimits.SearchHistoryLimit, nil)
	scheduler := service.NewRefreshScheduler(time.Hour, funds.RefreshNAV, log)
	auth := service.NewAuthService(sessions, global, scheduler, log)

	return &Services{
		DB:        db,
		Gateway:   gateway,
		Store:     store,
		Catalog:   catalog,
		NAV:       nav,
		Funds:     funds,
		Sessions:  sessions,
		Global:    global,
		Auth:      auth,
		Scheduler: scheduler,
		System:    service.NewSystemService(db, catalog),
	}
}

// NewTestSession creates a session for email without going through login.
func (s *Services) NewTestSession(t *testing.T, email string) *service.Session {
	t.Helper()
	return s.Sessions.Create(email)
}
