package testutil

import (
	"fmt"
	"time"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
)

// LatestNAVDate is the date of the most recent point produced by NAVHistory
// when called with the default date.
var LatestNAVDate = time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

// Sample scheme codes.
const (
	HDFCLargeCap   = 119551
	AxisELSS       = 120503
	MiraeMidCap    = 118834
	SBIBanking     = 119788
	ICICIValue     = 120323
	NipponSmallCap = 118778
	UnlistedScheme = 999999999
)

// NewFund creates a fund with the given code and name.
func NewFund(code int, name string) model.Fund {
	return model.Fund{SchemeCode: code, SchemeName: name}
}

// SampleFunds returns a small catalog spanning several houses and categories.
func SampleFunds() []model.Fund {
	isin := "INF846K01EW2"
	axis := NewFund(AxisELSS, "Axis ELSS Tax Saver Fund - Direct Plan - Growth")
	axis.IsinGrowth = &isin

	return []model.Fund{
		NewFund(HDFCLargeCap, "HDFC Large Cap Fund - Direct Plan - Growth"),
		axis,
		NewFund(MiraeMidCap, "Mirae Asset Mid Cap Fund - Regular Plan - Growth"),
		NewFund(SBIBanking, "SBI Banking & PSU Debt Fund - Direct Growth"),
		NewFund(ICICIValue, "ICICI Prudential Value Fund - Growth"),
		NewFund(NipponSmallCap, "Nippon India Small Cap Fund - Growth"),
	}
}

// NAVHistory builds a NAV response of days points for f, most recent first,
// ending on latest. The NAV rises by one percent of start per day, so the
// most recent value is the largest.
func NAVHistory(f model.Fund, latest time.Time, days int, start float64) model.NAVResponse {
	points := make([]model.NAVPoint, days)
	for i := 0; i < days; i++ {
		value := start + float64(days-1-i)*start/100
		points[i] = model.NAVPoint{
			Date: latest.AddDate(0, 0, -i).Format(model.NAVDateLayout),
			NAV:  fmt.Sprintf("%.5f", value),
		}
	}
	return model.NAVResponse{
		Meta: model.NAVMeta{
			SchemeCode: f.SchemeCode,
			SchemeName: f.SchemeName,
		},
		Data:   points,
		Status: "SUCCESS",
	}
}

// NAVPoints builds points from alternating date and NAV strings.
func NAVPoints(pairs ...string) []model.NAVPoint {
	points := make([]model.NAVPoint, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		points = append(points, model.NAVPoint{Date: pairs[i], NAV: pairs[i+1]})
	}
	return points
}
