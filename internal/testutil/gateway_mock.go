package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
)

// MockGateway is a mock implementation of mfapi.Client for testing.
// It returns predefined test data instead of making actual API calls.
// Schemes without a configured history fail with a transport error, which
// is what the real API yields for unknown codes.
type MockGateway struct {
	mu sync.Mutex

	// Funds is returned by FetchAllFunds
	Funds []model.Fund
	// FundsError is returned by FetchAllFunds when set
	FundsError error
	// NAV holds the history returned per scheme code
	NAV map[string]model.NAVResponse
	// NAVErrors holds the error returned per scheme code
	NAVErrors map[string]error
	// Delay is applied before every response; a cancelled context ends it early
	Delay time.Duration

	catalogCalls int
	navCalls     map[string]int
}

// NewMockGateway creates a mock serving SampleFunds and a ten day history for
// each of them.
func NewMockGateway() *MockGateway {
	m := &MockGateway{
		Funds:     SampleFunds(),
		NAV:       make(map[string]model.NAVResponse),
		NAVErrors: make(map[string]error),
		navCalls:  make(map[string]int),
	}
	for i, f := range m.Funds {
		m.NAV[f.Code()] = NAVHistory(f, LatestNAVDate, 10, 100+float64(i)*10)
	}
	return m
}

// WithFunds configures the catalog returned by FetchAllFunds.
func (m *MockGateway) WithFunds(funds ...model.Fund) *MockGateway {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Funds = funds
	return m
}

// WithFundsError configures FetchAllFunds to fail.
func (m *MockGateway) WithFundsError(err error) *MockGateway {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FundsError = err
	return m
}

// WithNAV configures the history returned for a scheme.
func (m *MockGateway) WithNAV(code string, resp model.NAVResponse) *MockGateway {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NAV[code] = resp
	delete(m.NAVErrors, code)
	return m
}

// WithNAVError configures FetchNAV to fail for a scheme.
func (m *MockGateway) WithNAVError(code string, err error) *MockGateway {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NAVErrors[code] = err
	return m
}

// WithDelay delays every response.
func (m *MockGateway) WithDelay(d time.Duration) *MockGateway {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Delay = d
	return m
}

// FetchAllFunds returns the configured catalog.
func (m *MockGateway) FetchAllFunds(ctx context.Context) ([]model.Fund, error) {
	m.mu.Lock()
	m.catalogCalls++
	funds, err, delay := m.Funds, m.FundsError, m.Delay
	m.mu.Unlock()

	if werr := wait(ctx, delay); werr != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTransport, werr)
	}
	if err != nil {
		return nil, err
	}
	out := make([]model.Fund, len(funds))
	copy(out, funds)
	return out, nil
}

// FetchNAV returns the configured history of a scheme.
func (m *MockGateway) FetchNAV(ctx context.Context, schemeCode string) (model.NAVResponse, error) {
	m.mu.Lock()
	m.navCalls[schemeCode]++
	resp, ok := m.NAV[schemeCode]
	err, delay := m.NAVErrors[schemeCode], m.Delay
	m.mu.Unlock()

	if werr := wait(ctx, delay); werr != nil {
		return model.NAVResponse{}, fmt.Errorf("%w: %w", apperrors.ErrTransport, werr)
	}
	if err != nil {
		return model.NAVResponse{}, err
	}
	if !ok {
		return model.NAVResponse{}, fmt.Errorf("scheme %s: %w: unexpected status 404", schemeCode, apperrors.ErrTransport)
	}
	resp.Data = append([]model.NAVPoint(nil), resp.Data...)
	return resp, nil
}

// CatalogCalls returns how many times FetchAllFunds was called.
func (m *MockGateway) CatalogCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalogCalls
}

// NAVCalls returns how many times FetchNAV was called for a scheme.
func (m *MockGateway) NAVCalls(code string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.navCalls[code]
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
