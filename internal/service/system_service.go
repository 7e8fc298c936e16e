package service

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/database"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db      *sql.DB
	catalog *CatalogService
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB, catalog *CatalogService) *SystemService {
	return &SystemService{
		db:      db,
		catalog: catalog,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the application and schema versions and whether the
// fund catalog has been loaded.
func (s *SystemService) CheckVersion() (model.VersionInfo, error) {
	dbVersion, err := database.Version(s.db)
	if err != nil {
		return model.VersionInfo{}, fmt.Errorf("failed to read schema version: %w", err)
	}

	info := model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  strconv.FormatInt(dbVersion, 10),
	}
	if c, ok := s.catalog.Loaded(); ok {
		info.CatalogVersion = c.Version
		info.CatalogSize = len(c.Funds)
		loadedAt := c.LoadedAt.UTC()
		info.CatalogLoadedAt = &loadedAt
	}
	return info, nil
}
