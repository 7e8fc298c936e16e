package model

import "time"

// VersionInfo contains version information for the application.
type VersionInfo struct {
	AppVersion      string     `json:"appVersion"`
	DbVersion       string     `json:"dbVersion"`
	CatalogVersion  int64      `json:"catalogVersion"`
	CatalogSize     int        `json:"catalogSize"`
	CatalogLoadedAt *time.Time `json:"catalogLoadedAt,omitempty"`
}
