package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
)

func TestValidateSchemeCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    int
		wantErr bool
	}{
		{"plain", "120503", 120503, false},
		{"padded", " 118834\n", 118834, false},
		{"empty", "", 0, true},
		{"letters", "12a", 0, true},
		{"zero", "0", 0, true},
		{"negative", "-5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateSchemeCode(tt.code)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrInvalidSchemeCode) {
					t.Errorf("ValidateSchemeCode(%q) error = %v, want ErrInvalidSchemeCode", tt.code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateSchemeCode(%q) unexpected error: %v", tt.code, err)
			}
			if got != tt.want {
				t.Errorf("ValidateSchemeCode(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("6f1c1d1e-0000-4000-8000-000000000000"); err != nil {
		t.Errorf("expected valid UUID, got %v", err)
	}
	if err := ValidateUUID("not-a-uuid"); !errors.Is(err, ErrInvalidUUID) {
		t.Errorf("expected ErrInvalidUUID, got %v", err)
	}
}

func TestValidateFundFilters(t *testing.T) {
	if err := ValidateFundFilters(model.FundFilters{SearchText: "hdfc", SelectedAMC: "HDFC"}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	long := strings.Repeat("x", MaxFilterLength+1)
	err := ValidateFundFilters(model.FundFilters{SearchText: long, SelectedType: long})

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("expected 2 failing fields, got %v", verr.Fields)
	}
	if want := "search: search must be 200 characters or less; type: type must be 200 characters or less"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
