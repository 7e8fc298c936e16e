package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/repository"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/service"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/testutil"
)

func newPreferenceService(t *testing.T, cipher *service.EmailCipher) (*service.PreferenceService, *repository.PreferenceRepository) {
	t.Helper()
	repo := repository.NewPreferenceRepository(testutil.SetupTestDB(t))
	return service.NewPreferenceService(repo, "user:test@example.com", 10, cipher), repo
}

// TestPreferenceService_SearchHistory tests the bounded most-recent-first history.
//
// WHY: the history is shown as suggestions; duplicates or an unbounded list
// degrade the search screen.
func TestPreferenceService_SearchHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("empty history is an empty list", func(t *testing.T) {
		svc, _ := newPreferenceService(t, nil)

		history, err := svc.SearchHistory(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{}, history)
	})

	t.Run("most recent first without duplicates", func(t *testing.T) {
		svc, _ := newPreferenceService(t, nil)

		for _, term := range []string{"hdfc", "axis", "hdfc", ""} {
			require.NoError(t, svc.SaveSearch(ctx, model.FundFilters{SearchText: term}))
		}

		history, err := svc.SearchHistory(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"hdfc", "axis"}, history)
	})

	t.Run("keeps the ten most recent terms", func(t *testing.T) {
		svc, _ := newPreferenceService(t, nil)

		for i := 0; i < 12; i++ {
			require.NoError(t, svc.SaveSearch(ctx, model.FundFilters{SearchText: fmt.Sprintf("term-%d", i)}))
		}

		history, err := svc.SearchHistory(ctx)
		require.NoError(t, err)
		require.Len(t, history, 10)
		assert.Equal(t, "term-11", history[0])
		assert.Equal(t, "term-2", history[9])
	})

	t.Run("search without text keeps the history", func(t *testing.T) {
		svc, _ := newPreferenceService(t, nil)
		require.NoError(t, svc.SaveSearch(ctx, model.FundFilters{SearchText: "axis"}))

		require.NoError(t, svc.SaveSearch(ctx, model.FundFilters{SelectedType: "ELSS"}))

		history, err := svc.SearchHistory(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"axis"}, history)

		filters, err := svc.LastFilters(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.FundFilters{SelectedType: "ELSS"}, filters)
	})

	t.Run("clear removes the history only", func(t *testing.T) {
		svc, _ := newPreferenceService(t, nil)
		require.NoError(t, svc.SaveSearch(ctx, model.FundFilters{SearchText: "axis"}))
		require.NoError(t, svc.SaveSelectedFunds(ctx, []string{"120503"}))

		require.NoError(t, svc.ClearSearchHistory(ctx))

		history, err := svc.SearchHistory(ctx)
		require.NoError(t, err)
		assert.Empty(t, history)

		codes, err := svc.SelectedFundCodes(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"120503"}, codes)
	})
}

// TestPreferenceService_TypedValues tests the typed accessors.
//
// WHY: values written by one version of the app are read back after a
// restart; the stored shapes must round-trip exactly.
func TestPreferenceService_TypedValues(t *testing.T) {
	ctx := context.Background()

	t.Run("filters round trip", func(t *testing.T) {
		svc, _ := newPreferenceService(t, nil)
		filters := model.FundFilters{SearchText: "cap", SelectedAMC: "HDFC", SelectedType: "Equity Fund"}

		require.NoError(t, svc.SaveSearch(ctx, filters))

		got, err := svc.LastFilters(ctx)
		require.NoError(t, err)
		assert.Equal(t, filters, got)
	})

	t.Run("filters are stored as flat fields", func(t *testing.T) {
		svc, repo := newPreferenceService(t, nil)
		require.NoError(t, svc.SaveSearch(ctx, model.FundFilters{SelectedCategory: "Mid Cap"}))

		raw, err := repo.Get(ctx, svc.Namespace(), service.KeyLastFilters)
		require.NoError(t, err)
		assert.JSONEq(t, `{"searchText":"","selectedAMC":"","selectedCategory":"Mid Cap","selectedType":""}`, raw)
	})

	t.Run("missing filters are empty", func(t *testing.T) {
		svc, _ := newPreferenceService(t, nil)

		got, err := svc.LastFilters(ctx)

		require.NoError(t, err)
		assert.True(t, got.IsEmpty())
	})

	t.Run("corrupt list surfaces a load error", func(t *testing.T) {
		svc, repo := newPreferenceService(t, nil)
		require.NoError(t, repo.Set(ctx, svc.Namespace(), service.KeyFavoriteFunds, "not json"))

		_, err := svc.FavoriteFundCodes(ctx)

		assert.ErrorIs(t, err, apperrors.ErrFailedToLoadPreferences)
	})

	t.Run("clear all removes every key", func(t *testing.T) {
		svc, _ := newPreferenceService(t, nil)
		require.NoError(t, svc.SaveUserEmail(ctx, "test@example.com"))
		require.NoError(t, svc.SaveFavoriteFunds(ctx, []string{"1", "2"}))

		require.NoError(t, svc.ClearAll(ctx))

		email, err := svc.UserEmail(ctx)
		require.NoError(t, err)
		assert.Empty(t, email)
		favorites, err := svc.FavoriteFundCodes(ctx)
		require.NoError(t, err)
		assert.Empty(t, favorites)
	})
}

// TestPreferenceService_EncryptedEmail tests email storage with a key.
//
// WHY: the email is the only personal datum on disk; with a key configured
// it must never be stored in plain text.
func TestPreferenceService_EncryptedEmail(t *testing.T) {
	ctx := context.Background()
	key, err := service.GenerateEmailKey()
	require.NoError(t, err)
	cipher, err := service.NewEmailCipher(key)
	require.NoError(t, err)

	svc, repo := newPreferenceService(t, cipher)
	require.NoError(t, svc.SaveUserEmail(ctx, "investor@example.com"))

	raw, err := repo.Get(ctx, svc.Namespace(), service.KeyUserEmail)
	require.NoError(t, err)
	assert.NotContains(t, raw, "investor@example.com")

	email, err := svc.UserEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, "investor@example.com", email)
}
