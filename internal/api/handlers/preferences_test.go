package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/handlers"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/request"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/response"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/testutil"
)

func TestPreferencesHandler(t *testing.T) {
	svcs := testutil.NewTestServices(t, testutil.NewMockGateway())
	sess := svcs.NewTestSession(t, "prefs@example.com")
	funds := handlers.NewFundHandler(svcs.Funds)
	handler := handlers.NewPreferencesHandler()

	for _, term := range []string{"hdfc", "axis", "hdfc"} {
		req := testutil.NewJSONRequest(http.MethodPost, "/api/funds/search", request.SearchRequest{
			SearchText:  term,
			SelectedAMC: "All",
		})
		w := httptest.NewRecorder()
		funds.Search(w, withSession(req, sess))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := httptest.NewRecorder()
	handler.SearchHistory(w, withSession(httptest.NewRequest(http.MethodGet, "/api/preferences/search-history", nil), sess))
	require.Equal(t, http.StatusOK, w.Code)

	var history []string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&history))
	assert.Equal(t, []string{"hdfc", "axis"}, history)

	w = httptest.NewRecorder()
	handler.Filters(w, withSession(httptest.NewRequest(http.MethodGet, "/api/preferences/filters", nil), sess))
	require.Equal(t, http.StatusOK, w.Code)

	var filters model.FundFilters
	require.NoError(t, json.NewDecoder(w.Body).Decode(&filters))
	assert.Equal(t, model.FundFilters{SearchText: "hdfc"}, filters)

	w = httptest.NewRecorder()
	handler.ClearSearchHistory(w, withSession(httptest.NewRequest(http.MethodDelete, "/api/preferences/search-history", nil), sess))
	assert.Equal(t, http.StatusNoContent, w.Code)

	history, err := sess.Preferences().SearchHistory(t.Context())
	require.NoError(t, err)
	assert.Empty(t, history)

	w = httptest.NewRecorder()
	handler.ClearAll(w, withSession(httptest.NewRequest(http.MethodDelete, "/api/preferences", nil), sess))
	assert.Equal(t, http.StatusNoContent, w.Code)
	testutil.AssertRowCount(t, svcs.DB, "preference", 0)

	t.Run("requires a session", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Filters(w, httptest.NewRequest(http.MethodGet, "/api/preferences/filters", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var body response.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "session required", body.Error)
	})
}
