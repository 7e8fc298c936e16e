// Package version holds build metadata injected with -ldflags.
package version

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/rabbit-invest/rabbit-invest-backend/internal/version.Version=1.2.0"
var Version = "dev"
