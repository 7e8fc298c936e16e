package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
)

// PreferenceRepository provides data access methods for the preference table,
// a string-keyed store partitioned by namespace. Writes are last-write-wins.
type PreferenceRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPreferenceRepository creates a new PreferenceRepository with the provided database connection.
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// withTx returns a copy of the repository bound to tx.
func (r *PreferenceRepository) withTx(tx *sql.Tx) *PreferenceRepository {
	return &PreferenceRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *PreferenceRepository) getQuerier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Get returns the value stored under key.
// Returns apperrors.ErrPreferenceNotFound when the key is absent.
func (r *PreferenceRepository) Get(ctx context.Context, namespace, key string) (string, error) {
	query := `SELECT value FROM preference WHERE namespace = ? AND key = ?`

	var value string
	err := r.getQuerier().QueryRowContext(ctx, query, namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrPreferenceNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query preference %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *PreferenceRepository) Set(ctx context.Context, namespace, key, value string) error {
	query := `
		INSERT INTO preference (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	_, err := r.getQuerier().ExecContext(ctx, query, namespace, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store preference %q: %w", key, err)
	}
	return nil
}

// SetMany stores every value of values in one transaction. Either all keys
// are written or none is.
func (r *PreferenceRepository) SetMany(ctx context.Context, namespace string, values map[string]string) error {
	if r.tx != nil {
		return r.setAll(ctx, namespace, values)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if err := r.withTx(tx).setAll(ctx, namespace, values); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit preferences: %w", err)
	}
	return nil
}

func (r *PreferenceRepository) setAll(ctx context.Context, namespace string, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := r.Set(ctx, namespace, k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *PreferenceRepository) Delete(ctx context.Context, namespace, key string) error {
	_, err := r.getQuerier().ExecContext(ctx, `DELETE FROM preference WHERE namespace = ? AND key = ?`, namespace, key)
	if err != nil {
		return fmt.Errorf("failed to delete preference %q: %w", key, err)
	}
	return nil
}

// Clear removes every key of the namespace.
func (r *PreferenceRepository) Clear(ctx context.Context, namespace string) error {
	_, err := r.getQuerier().ExecContext(ctx, `DELETE FROM preference WHERE namespace = ?`, namespace)
	if err != nil {
		return fmt.Errorf("failed to clear preferences: %w", err)
	}
	return nil
}
