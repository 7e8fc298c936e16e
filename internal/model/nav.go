package model

import (
	"strconv"
	"strings"
	"time"
)

// NAVDateLayout is the textual date format used by the upstream NAV endpoint.
const NAVDateLayout = "02-01-2006"

// NAVResponse is the body of GET /mf/{schemeCode}.
type NAVResponse struct {
	Meta   NAVMeta    `json:"meta"`
	Data   []NAVPoint `json:"data"`
	Status string     `json:"status"`
}

// NAVMeta describes the scheme a NAV history belongs to.
type NAVMeta struct {
	FundHouse           string  `json:"fund_house"`
	SchemeType          string  `json:"scheme_type"`
	SchemeCategory      string  `json:"scheme_category"`
	SchemeCode          int     `json:"scheme_code"`
	SchemeName          string  `json:"scheme_name"`
	IsinGrowth          *string `json:"isin_growth"`
	IsinDivReinvestment *string `json:"isin_div_reinvestment"`
}

// NAVPoint is one day's net asset value. Both fields are kept in their
// textual form; ParsedDate and Value interpret them on demand.
type NAVPoint struct {
	Date string `json:"date"`
	NAV  string `json:"nav"`
}

// ParsedDate returns the point's calendar date in UTC. ok is false when the
// date does not match dd-mm-yyyy.
func (p NAVPoint) ParsedDate() (time.Time, bool) {
	t, err := time.ParseInLocation(NAVDateLayout, strings.TrimSpace(p.Date), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Value returns the NAV as a number. ok is false when the NAV is not numeric.
func (p NAVPoint) Value() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(p.NAV), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NAVChange is the difference between the two most recent NAVs.
type NAVChange struct {
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// ChartPoint is a parsed NAV point used for plotting.
type ChartPoint struct {
	Date time.Time `json:"date"`
	NAV  float64   `json:"nav"`
}

// ReturnStats summarises daily returns over a chart window.
type ReturnStats struct {
	Points     int     `json:"points"`
	MeanReturn float64 `json:"meanReturn"`
	Volatility float64 `json:"volatility"`
}

// Comparison is the comparison card for one selected fund. HasData is false
// when the gateway returned nothing for the scheme; the other NAV fields are
// then empty.
type Comparison struct {
	FundView
	HasData   bool         `json:"hasData"`
	LatestNAV string       `json:"latestNav,omitempty"`
	LatestOn  string       `json:"latestOn,omitempty"`
	Change    *NAVChange   `json:"change,omitempty"`
	Chart     []ChartPoint `json:"chart"`
	Stats     *ReturnStats `json:"stats,omitempty"`
}

// ComparisonResult is the full comparison view.
type ComparisonResult struct {
	Funds     []Comparison `json:"funds"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
