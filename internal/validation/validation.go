package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
)

// Common validation errors
var (
	ErrInvalidUUID = fmt.Errorf("invalid UUID format")
)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateSchemeCode parses a scheme code. Surrounding whitespace is ignored;
// anything but a positive integer yields apperrors.ErrInvalidSchemeCode.
func ValidateSchemeCode(code string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidSchemeCode, code)
	}
	return n, nil
}
