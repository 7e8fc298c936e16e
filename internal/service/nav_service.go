package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/mfapi"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
)

// DefaultChartPoints is the number of points in a comparison chart.
const DefaultChartPoints = 20

// NAVService fetches NAV histories and derives the figures shown on the
// comparison and favorites views.
type NAVService struct {
	gateway mfapi.Client
	fanout  int
	log     zerolog.Logger
}

// NewNAVService creates a NAVService issuing at most fanout concurrent requests.
func NewNAVService(gateway mfapi.Client, fanout int, log zerolog.Logger) *NAVService {
	if fanout < 1 {
		fanout = 1
	}
	return &NAVService{
		gateway: gateway,
		fanout:  fanout,
		log:     log,
	}
}

// FetchMany fetches the NAV history of every code concurrently. Codes whose
// request fails are left out of the result; the failure is only logged.
// The returned error is non-nil only when ctx is done, in which case the map
// holds whatever completed before cancellation.
func (s *NAVService) FetchMany(ctx context.Context, codes []string) (map[string]model.NAVResponse, error) {
	results := make([]*model.NAVResponse, len(codes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)

	for i, code := range codes {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			resp, err := s.gateway.FetchNAV(gctx, code)
			if err != nil {
				s.log.Debug().Err(err).Str("scheme_code", code).Msg("NAV fetch failed, dropping scheme")
				return nil
			}
			SortHistory(resp.Data)
			results[i] = &resp
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]model.NAVResponse, len(codes))
	for i, code := range codes {
		if results[i] != nil {
			out[code] = *results[i]
		}
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// FetchOne fetches a single NAV history and surfaces gateway errors.
func (s *NAVService) FetchOne(ctx context.Context, code string) (model.NAVResponse, error) {
	resp, err := s.gateway.FetchNAV(ctx, code)
	if err != nil {
		return model.NAVResponse{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveNAV, err)
	}
	if len(resp.Data) == 0 {
		return model.NAVResponse{}, fmt.Errorf("%w: scheme %s", apperrors.ErrNAVNotFound, code)
	}
	SortHistory(resp.Data)
	return resp, nil
}

// SortHistory orders points most recent first. Points with an unparseable
// date sink to the end keeping their relative order.
func SortHistory(points []model.NAVPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		di, okI := points[i].ParsedDate()
		dj, okJ := points[j].ParsedDate()
		switch {
		case okI && okJ:
			return di.After(dj)
		case okI:
			return true
		default:
			return false
		}
	})
}

// LatestNAV returns the NAV string of the first point, or "" for an empty history.
func LatestNAV(points []model.NAVPoint) string {
	if len(points) == 0 {
		return ""
	}
	return strings.TrimSpace(points[0].NAV)
}

// DailyChange returns the change between the two most recent NAVs. ok is false
// when either value is missing or unparseable, or the previous NAV is zero.
func DailyChange(points []model.NAVPoint) (change model.NAVChange, ok bool) {
	if len(points) < 2 {
		return model.NAVChange{}, false
	}
	latest, ok1 := points[0].Value()
	previous, ok2 := points[1].Value()
	if !ok1 || !ok2 || previous == 0 {
		return model.NAVChange{}, false
	}
	diff := latest - previous
	return model.NAVChange{
		Value:      round(diff, ValuePrecision),
		Percentage: round(diff/previous*100, PercentPrecision),
	}, true
}

// ChartSeries returns the points among the latest n entries whose date and
// value both parse, oldest first.
func ChartSeries(points []model.NAVPoint, n int) []model.ChartPoint {
	if n > len(points) {
		n = len(points)
	}
	series := make([]model.ChartPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		date, okDate := points[i].ParsedDate()
		value, okValue := points[i].Value()
		if !okDate || !okValue {
			continue
		}
		series = append(series, model.ChartPoint{Date: date, NAV: value})
	}
	return series
}

// Stats computes the mean and standard deviation of the daily percentage
// returns of a chart series. nil is returned when fewer than two returns exist.
func Stats(series []model.ChartPoint) *model.ReturnStats {
	returns := make([]float64, 0, len(series))
	for i := 1; i < len(series); i++ {
		prev := series[i-1].NAV
		if prev == 0 {
			continue
		}
		returns = append(returns, (series[i].NAV-prev)/prev*100)
	}
	if len(returns) < 2 {
		return nil
	}
	mean, std := stat.MeanStdDev(returns, nil)
	return &model.ReturnStats{
		Points:     len(series),
		MeanReturn: round(mean, ValuePrecision),
		Volatility: round(std, ValuePrecision),
	}
}

// BuildComparison assembles the comparison card of a fund from its NAV
// history. A nil history yields a card without data.
func BuildComparison(view model.FundView, history *model.NAVResponse) model.Comparison {
	card := model.Comparison{FundView: view, Chart: []model.ChartPoint{}}
	if history == nil || len(history.Data) == 0 {
		return card
	}

	card.HasData = true
	card.LatestNAV = LatestNAV(history.Data)
	card.LatestOn = strings.TrimSpace(history.Data[0].Date)
	if change, ok := DailyChange(history.Data); ok {
		card.Change = &change
	}
	card.Chart = ChartSeries(history.Data, DefaultChartPoints)
	card.Stats = Stats(card.Chart)
	return card
}
