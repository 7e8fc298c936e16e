package model

import "strconv"

// Fund is a mutual fund scheme as listed by the upstream catalog.
// Identity is the scheme code: two funds with the same code are the same scheme
// even when their names differ.
type Fund struct {
	SchemeCode          int     `json:"schemeCode"`
	SchemeName          string  `json:"schemeName"`
	IsinGrowth          *string `json:"isinGrowth"`
	IsinDivReinvestment *string `json:"isinDivReinvestment"`
}

// Code returns the scheme code in the string form used by the NAV endpoint and
// the preference store.
func (f Fund) Code() string {
	return strconv.Itoa(f.SchemeCode)
}

// SameAs reports whether both values refer to the same scheme.
func (f Fund) SameAs(other Fund) bool {
	return f.SchemeCode == other.SchemeCode
}

// FundView is a fund enriched with the attributes derived from its name and
// the caller's selection state. It is what the API returns for listings.
type FundView struct {
	Fund
	FundHouse      string `json:"fundHouse"`
	SchemeType     string `json:"schemeType"`
	SchemeCategory string `json:"schemeCategory"`
	Selected       bool   `json:"selected"`
	Favorite       bool   `json:"favorite"`
}

// FilterOptions holds the distinct values available to each filter.
type FilterOptions struct {
	FundHouses []string `json:"fundHouses"`
	Categories []string `json:"categories"`
	Types      []string `json:"types"`
}

// FavoriteFund is a favorite with its most recent NAV. LatestNAV is "N/A" when
// the gateway returned no data for the scheme.
type FavoriteFund struct {
	FundView
	LatestNAV string `json:"latestNav"`
}
