package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
)

// Preference keys.
const (
	KeyUserEmail     = "user_email"
	KeySelectedFunds = "selected_funds"
	KeyLastFilters   = "last_filters"
	KeySearchHistory = "search_history"
	KeyFavoriteFunds = "favorite_funds"
)

// GlobalNamespace holds application-wide preferences such as the last email
// used to log in.
const GlobalNamespace = "_app"

// PreferenceStore is a string-keyed store partitioned by namespace.
// repository.PreferenceRepository implements it.
type PreferenceStore interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	SetMany(ctx context.Context, namespace string, values map[string]string) error
	Delete(ctx context.Context, namespace, key string) error
	Clear(ctx context.Context, namespace string) error
}

// PreferenceService reads and writes the typed preferences of one namespace.
type PreferenceService struct {
	store        PreferenceStore
	namespace    string
	historyLimit int
	cipher       *EmailCipher
}

// NewPreferenceService binds the store to a namespace. historyLimit bounds the
// search history; cipher may be nil.
func NewPreferenceService(store PreferenceStore, namespace string, historyLimit int, cipher *EmailCipher) *PreferenceService {
	return &PreferenceService{
		store:        store,
		namespace:    namespace,
		historyLimit: historyLimit,
		cipher:       cipher,
	}
}

// Namespace returns the namespace the service is bound to.
func (s *PreferenceService) Namespace() string { return s.namespace }

// SaveUserEmail stores the email, encrypted when a key is configured.
func (s *PreferenceService) SaveUserEmail(ctx context.Context, email string) error {
	sealed, err := s.cipher.Encrypt(email)
	if err != nil {
		return err
	}
	return s.set(ctx, KeyUserEmail, sealed)
}

// UserEmail returns the stored email, or "" when none is stored.
func (s *PreferenceService) UserEmail(ctx context.Context) (string, error) {
	sealed, ok, err := s.get(ctx, KeyUserEmail)
	if err != nil || !ok {
		return "", err
	}
	return s.cipher.Decrypt(sealed)
}

// SaveSelectedFunds stores the scheme codes of the comparison selection.
func (s *PreferenceService) SaveSelectedFunds(ctx context.Context, codes []string) error {
	return s.setJSON(ctx, KeySelectedFunds, codes)
}

// SelectedFundCodes returns the stored selection codes.
func (s *PreferenceService) SelectedFundCodes(ctx context.Context) ([]string, error) {
	return s.getList(ctx, KeySelectedFunds)
}

// SaveFavoriteFunds stores the scheme codes of the favorites list.
func (s *PreferenceService) SaveFavoriteFunds(ctx context.Context, codes []string) error {
	return s.setJSON(ctx, KeyFavoriteFunds, codes)
}

// FavoriteFundCodes returns the stored favorite codes.
func (s *PreferenceService) FavoriteFundCodes(ctx context.Context) ([]string, error) {
	return s.getList(ctx, KeyFavoriteFunds)
}

// SaveSearch stores filters as the last filters and records a non-empty
// search text as the most recent search. An existing copy of the text is
// moved to the front and the history is trimmed to the configured limit.
// Both keys are written in one transaction.
func (s *PreferenceService) SaveSearch(ctx context.Context, filters model.FundFilters) error {
	encoded, err := encodeJSON(KeyLastFilters, map[string]string{
		"searchText":       filters.SearchText,
		"selectedAMC":      filters.SelectedAMC,
		"selectedCategory": filters.SelectedCategory,
		"selectedType":     filters.SelectedType,
	})
	if err != nil {
		return err
	}
	values := map[string]string{KeyLastFilters: encoded}

	if term := filters.SearchText; term != "" {
		history, err := s.SearchHistory(ctx)
		if err != nil {
			return err
		}
		encodedHistory, err := encodeJSON(KeySearchHistory, pushHistory(history, term, s.historyLimit))
		if err != nil {
			return err
		}
		values[KeySearchHistory] = encodedHistory
	}

	if err := s.store.SetMany(ctx, s.namespace, values); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToSavePreferences, err)
	}
	return nil
}

// LastFilters returns the stored filters, or empty filters when none are stored.
func (s *PreferenceService) LastFilters(ctx context.Context) (model.FundFilters, error) {
	raw, ok, err := s.get(ctx, KeyLastFilters)
	if err != nil || !ok {
		return model.FundFilters{}, err
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return model.FundFilters{}, fmt.Errorf("%w: %s: %v", apperrors.ErrFailedToLoadPreferences, KeyLastFilters, err)
	}
	return model.FundFilters{
		SearchText:       fields["searchText"],
		SelectedAMC:      fields["selectedAMC"],
		SelectedCategory: fields["selectedCategory"],
		SelectedType:     fields["selectedType"],
	}, nil
}

func pushHistory(history []string, term string, limit int) []string {
	updated := make([]string, 0, len(history)+1)
	updated = append(updated, term)
	for _, h := range history {
		if h != term {
			updated = append(updated, h)
		}
	}
	if len(updated) > limit {
		updated = updated[:limit]
	}
	return updated
}

// SearchHistory returns the search history, most recent first.
func (s *PreferenceService) SearchHistory(ctx context.Context) ([]string, error) {
	return s.getList(ctx, KeySearchHistory)
}

// ClearSearchHistory removes the search history.
func (s *PreferenceService) ClearSearchHistory(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.namespace, KeySearchHistory); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToSavePreferences, err)
	}
	return nil
}

// ClearAll removes every key of the namespace.
func (s *PreferenceService) ClearAll(ctx context.Context) error {
	if err := s.store.Clear(ctx, s.namespace); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToSavePreferences, err)
	}
	return nil
}

func (s *PreferenceService) get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.store.Get(ctx, s.namespace, key)
	if errors.Is(err, apperrors.ErrPreferenceNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", apperrors.ErrFailedToLoadPreferences, err)
	}
	return value, true, nil
}

func (s *PreferenceService) set(ctx context.Context, key, value string) error {
	if err := s.store.Set(ctx, s.namespace, key, value); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToSavePreferences, err)
	}
	return nil
}

func (s *PreferenceService) setJSON(ctx context.Context, key string, value interface{}) error {
	data, err := encodeJSON(key, value)
	if err != nil {
		return err
	}
	return s.set(ctx, key, data)
}

func encodeJSON(key string, value interface{}) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", apperrors.ErrFailedToSavePreferences, key, err)
	}
	return string(data), nil
}

func (s *PreferenceService) getList(ctx context.Context, key string) ([]string, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil {
		return nil, err
	}
	list := []string{}
	if !ok {
		return list, nil
	}
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrFailedToLoadPreferences, key, err)
	}
	return list, nil
}
