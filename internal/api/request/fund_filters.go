package request

import (
	"net/url"
	"strings"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/validation"
)

// Query parameters of GET /api/funds.
const (
	ParamSearch   = "search"
	ParamAMC      = "amc"
	ParamCategory = "category"
	ParamType     = "type"
)

// AllOption is the picker value meaning "no constraint".
const AllOption = "All"

// ParseFundFilters extracts the fund filters from query parameters.
// Returns nil filters when none of the filter parameters is present, so the
// caller can fall back to the saved filters.
//
// Values are normalized by NormalizeFundFilters.
func ParseFundFilters(query url.Values) (*model.FundFilters, error) {
	present := false
	for _, key := range []string{ParamSearch, ParamAMC, ParamCategory, ParamType} {
		if _, ok := query[key]; ok {
			present = true
			break
		}
	}
	if !present {
		return nil, nil
	}

	filters, err := NormalizeFundFilters(model.FundFilters{
		SearchText:       query.Get(ParamSearch),
		SelectedAMC:      query.Get(ParamAMC),
		SelectedCategory: query.Get(ParamCategory),
		SelectedType:     query.Get(ParamType),
	})
	if err != nil {
		return nil, err
	}
	return &filters, nil
}

// SearchRequest represents the request body of POST /api/funds/search.
type SearchRequest struct {
	SearchText       string `json:"searchText"`
	SelectedAMC      string `json:"selectedAMC"`
	SelectedCategory string `json:"selectedCategory"`
	SelectedType     string `json:"selectedType"`
}

// Filters returns the normalized and validated filters of the request.
func (r SearchRequest) Filters() (model.FundFilters, error) {
	return NormalizeFundFilters(model.FundFilters(r))
}

// NormalizeFundFilters trims every value, clears the pickers set to "All"
// (any case) and validates the result.
func NormalizeFundFilters(f model.FundFilters) (model.FundFilters, error) {
	f.SearchText = strings.TrimSpace(f.SearchText)
	for _, picker := range []*string{&f.SelectedAMC, &f.SelectedCategory, &f.SelectedType} {
		*picker = strings.TrimSpace(*picker)
		if strings.EqualFold(*picker, AllOption) {
			*picker = ""
		}
	}

	if err := validation.ValidateFundFilters(f); err != nil {
		return model.FundFilters{}, err
	}
	return f, nil
}
