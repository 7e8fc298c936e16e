package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/handlers"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/middleware"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/request"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/response"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/service"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/testutil"
)

// withSession places sess in the request context the way RequireSession does.
func withSession(req *http.Request, sess *service.Session) *http.Request {
	return req.WithContext(middleware.WithSession(req.Context(), sess))
}

func TestFundHandler_Funds(t *testing.T) {
	t.Run("lists funds matching the query", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())
		sess := svcs.NewTestSession(t, "h@example.com")
		handler := handlers.NewFundHandler(svcs.Funds)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/funds", map[string]string{
			"search": "axis",
		})
		w := httptest.NewRecorder()

		handler.Funds(w, withSession(req, sess))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var funds []model.FundView
		require.NoError(t, json.NewDecoder(w.Body).Decode(&funds))
		require.Len(t, funds, 1)
		assert.Equal(t, testutil.AxisELSS, funds[0].SchemeCode)
		assert.Equal(t, "Axis", funds[0].FundHouse)
	})

	t.Run("returns 401 without a session", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())
		handler := handlers.NewFundHandler(svcs.Funds)

		w := httptest.NewRecorder()
		handler.Funds(w, httptest.NewRequest(http.MethodGet, "/api/funds", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns 502 when the catalog is unavailable", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway().WithFundsError(apperrors.ErrTransport))
		sess := svcs.NewTestSession(t, "down@example.com")
		handler := handlers.NewFundHandler(svcs.Funds)

		w := httptest.NewRecorder()
		handler.Funds(w, withSession(httptest.NewRequest(http.MethodGet, "/api/funds", nil), sess))

		assert.Equal(t, http.StatusBadGateway, w.Code)

		var body response.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, apperrors.ErrCatalogUnavailable.Error(), body.Error)
	})
}

// TestFundHandler_Search tests applying filters to the session.
//
// WHY: browsing with GET must stay free of side effects; only an explicit
// search saves the filters and the search history.
func TestFundHandler_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("GET with filters saves nothing", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())
		sess := svcs.NewTestSession(t, "get@example.com")
		handler := handlers.NewFundHandler(svcs.Funds)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/funds", map[string]string{
			"search": "axis",
		})
		w := httptest.NewRecorder()
		handler.Funds(w, withSession(req, sess))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		history, err := sess.Preferences().SearchHistory(ctx)
		require.NoError(t, err)
		assert.Empty(t, history)
		assert.Equal(t, model.FundFilters{}, sess.Filters())
		testutil.AssertRowCount(t, svcs.DB, "preference", 0)
	})

	t.Run("POST applies and saves the filters", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())
		sess := svcs.NewTestSession(t, "post@example.com")
		handler := handlers.NewFundHandler(svcs.Funds)

		req := testutil.NewJSONRequest(http.MethodPost, "/api/funds/search", request.SearchRequest{
			SearchText:   "cap",
			SelectedType: "Equity Fund",
		})
		w := httptest.NewRecorder()
		handler.Search(w, withSession(req, sess))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var funds []model.FundView
		require.NoError(t, json.NewDecoder(w.Body).Decode(&funds))
		assert.Len(t, funds, 3)

		saved, err := sess.Preferences().LastFilters(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.FundFilters{SearchText: "cap", SelectedType: "Equity Fund"}, saved)
		assert.Equal(t, saved, sess.Filters())

		history, err := sess.Preferences().SearchHistory(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"cap"}, history)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())
		sess := svcs.NewTestSession(t, "bad@example.com")
		handler := handlers.NewFundHandler(svcs.Funds)

		req := testutil.NewJSONRequest(http.MethodPost, "/api/funds/search", map[string]string{"page": "2"})
		w := httptest.NewRecorder()
		handler.Search(w, withSession(req, sess))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFundHandler_FundNAV(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantStatus int
	}{
		{"known scheme", "120503", http.StatusOK},
		{"malformed code", "abc", http.StatusBadRequest},
		{"upstream failure", "999999999", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcs := testutil.NewTestServices(t, testutil.NewMockGateway())
			handler := handlers.NewFundHandler(svcs.Funds)

			req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/funds/"+tt.code+"/nav",
				map[string]string{"schemeCode": tt.code})
			w := httptest.NewRecorder()

			handler.FundNAV(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestFundHandler_OptionsAndReload(t *testing.T) {
	svcs := testutil.NewTestServices(t, testutil.NewMockGateway())
	sess := svcs.NewTestSession(t, "opts@example.com")
	handler := handlers.NewFundHandler(svcs.Funds)

	w := httptest.NewRecorder()
	handler.Options(w, httptest.NewRequest(http.MethodGet, "/api/funds/options", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var opts model.FilterOptions
	require.NoError(t, json.NewDecoder(w.Body).Decode(&opts))
	assert.Contains(t, opts.FundHouses, "HDFC")

	w = httptest.NewRecorder()
	handler.Reload(w, withSession(httptest.NewRequest(http.MethodPost, "/api/funds/reload", nil), sess))
	require.Equal(t, http.StatusOK, w.Code)

	var reload handlers.ReloadResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&reload))
	assert.Equal(t, int64(2), reload.Version)
	assert.Equal(t, 6, reload.Funds)
}
