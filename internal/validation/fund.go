package validation

import (
	"fmt"
	"unicode/utf8"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
)

// MaxFilterLength bounds the length of every fund filter value.
const MaxFilterLength = 200

// ValidateFundFilters checks the fund filters of a listing request.
func ValidateFundFilters(f model.FundFilters) error {
	errors := make(map[string]string)

	fields := map[string]string{
		"search":   f.SearchText,
		"amc":      f.SelectedAMC,
		"category": f.SelectedCategory,
		"type":     f.SelectedType,
	}
	for field, value := range fields {
		if utf8.RuneCountInString(value) > MaxFilterLength {
			errors[field] = fmt.Sprintf("%s must be %d characters or less", field, MaxFilterLength)
		} else if !utf8.ValidString(value) {
			errors[field] = fmt.Sprintf("%s must be valid UTF-8", field)
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
