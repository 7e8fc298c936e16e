// Package apperrors defines the sentinel errors shared across layers.
// Callers wrap them with fmt.Errorf("...: %w") and test with errors.Is.
package apperrors

import "errors"

// Gateway errors classify failures talking to the upstream fund API.
var (
	// ErrInvalidAddress indicates the request URL could not be built.
	ErrInvalidAddress = errors.New("invalid gateway address")

	// ErrTransport indicates a network-level failure or a non-success HTTP status.
	ErrTransport = errors.New("gateway transport failure")

	// ErrDecode indicates the response body did not match the expected shape.
	ErrDecode = errors.New("gateway response decode failure")
)

// Domain entity errors represent missing or invalid entities in the system.
var (
	// ErrFundNotFound indicates that no fund with the given scheme code is in the catalog.
	ErrFundNotFound = errors.New("fund not found")

	// ErrNAVNotFound indicates the gateway returned no NAV points for a scheme.
	ErrNAVNotFound = errors.New("nav history not found")

	// ErrPreferenceNotFound indicates that a preference key has no stored value.
	ErrPreferenceNotFound = errors.New("preference not found")

	// ErrSessionNotFound indicates that the session id is missing or unknown.
	ErrSessionNotFound = errors.New("session not found")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrSelectionLimitReached is returned when adding to a full comparison selection.
	ErrSelectionLimitReached = errors.New("selection limit reached")

	// ErrFavoritesLimitReached is returned when adding to a full favorites list.
	ErrFavoritesLimitReached = errors.New("favorites limit reached")

	// ErrInvalidSchemeCode indicates a scheme code that is not a positive integer.
	ErrInvalidSchemeCode = errors.New("invalid scheme code")

	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNotEnoughFunds indicates a comparison was requested with fewer than two selected funds.
	ErrNotEnoughFunds = errors.New("at least two funds must be selected to compare")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	// ErrCatalogUnavailable indicates the fund catalog could not be loaded.
	ErrCatalogUnavailable = errors.New("fund catalog unavailable")

	ErrFailedToRetrieveNAV        = errors.New("failed to retrieve nav history")
	ErrFailedToLoadPreferences    = errors.New("failed to load preferences")
	ErrFailedToSavePreferences    = errors.New("failed to save preferences")
	ErrFailedToDecryptPreferences = errors.New("failed to decrypt preference value")
)
