package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
)

// PersistFunc stores the scheme codes of a FundSet after a mutation.
type PersistFunc func(ctx context.Context, codes []string) error

// FundSet is a set of funds keyed by scheme code with a fixed capacity. It is
// used for both the comparison selection and the favorites list.
//
// FundSet is not safe for concurrent use; Session serialises access.
type FundSet struct {
	capacity int
	limitErr error
	persist  PersistFunc

	order []int
	funds map[int]model.Fund
}

// NewFundSet creates an empty set holding at most capacity funds. limitErr is
// returned by Add when the set is full. persist may be nil.
func NewFundSet(capacity int, limitErr error, persist PersistFunc) *FundSet {
	return &FundSet{
		capacity: capacity,
		limitErr: limitErr,
		persist:  persist,
		funds:    make(map[int]model.Fund),
	}
}

// Add inserts f and persists the new code list. Adding a member is a no-op.
// When the set is full and f is not a member the set is left unchanged and
// the set's limit error is returned.
func (s *FundSet) Add(ctx context.Context, f model.Fund) error {
	if s.Contains(f) {
		return nil
	}
	if len(s.order) >= s.capacity {
		return s.limitErr
	}

	s.order = append(s.order, f.SchemeCode)
	s.funds[f.SchemeCode] = f

	if err := s.save(ctx); err != nil {
		s.drop(f.SchemeCode)
		return err
	}
	return nil
}

// Remove deletes f if present and persists the new code list.
func (s *FundSet) Remove(ctx context.Context, f model.Fund) error {
	if !s.Contains(f) {
		return s.save(ctx)
	}

	idx := s.drop(f.SchemeCode)
	if err := s.save(ctx); err != nil {
		s.order = append(s.order[:idx], append([]int{f.SchemeCode}, s.order[idx:]...)...)
		s.funds[f.SchemeCode] = f
		return err
	}
	return nil
}

// Toggle removes f when present and adds it otherwise. member reports
// whether f is in the set afterwards.
func (s *FundSet) Toggle(ctx context.Context, f model.Fund) (member bool, err error) {
	if s.Contains(f) {
		return false, s.Remove(ctx, f)
	}
	if err := s.Add(ctx, f); err != nil {
		return false, err
	}
	return true, nil
}

// Contains reports whether a fund with f's scheme code is in the set.
func (s *FundSet) Contains(f model.Fund) bool {
	return s.ContainsCode(f.SchemeCode)
}

// ContainsCode reports whether the scheme code is in the set.
func (s *FundSet) ContainsCode(code int) bool {
	_, ok := s.funds[code]
	return ok
}

// Restore replaces the contents with the catalog funds whose codes appear in
// persisted, in persisted order. Codes missing from the catalog or not numeric
// are dropped; at most Cap funds are kept. Restore does not persist.
func (s *FundSet) Restore(catalog []model.Fund, persisted []string) {
	byCode := make(map[int]model.Fund, len(catalog))
	for _, f := range catalog {
		if _, dup := byCode[f.SchemeCode]; !dup {
			byCode[f.SchemeCode] = f
		}
	}

	s.order = s.order[:0]
	s.funds = make(map[int]model.Fund)
	for _, raw := range persisted {
		code, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		f, ok := byCode[code]
		if !ok || s.ContainsCode(code) {
			continue
		}
		if len(s.order) >= s.capacity {
			break
		}
		s.order = append(s.order, code)
		s.funds[code] = f
	}
}

// Clear empties the set without persisting.
func (s *FundSet) Clear() {
	s.order = nil
	s.funds = make(map[int]model.Fund)
}

// Funds returns the members in insertion order.
func (s *FundSet) Funds() []model.Fund {
	out := make([]model.Fund, 0, len(s.order))
	for _, code := range s.order {
		out = append(out, s.funds[code])
	}
	return out
}

// Codes returns the members' scheme codes in insertion order.
func (s *FundSet) Codes() []string {
	out := make([]string, 0, len(s.order))
	for _, code := range s.order {
		out = append(out, strconv.Itoa(code))
	}
	return out
}

// Len returns the number of members.
func (s *FundSet) Len() int { return len(s.order) }

// Cap returns the capacity.
func (s *FundSet) Cap() int { return s.capacity }

// Full reports whether no further fund can be added.
func (s *FundSet) Full() bool { return len(s.order) >= s.capacity }

func (s *FundSet) save(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist(ctx, s.Codes()); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToSavePreferences, err)
	}
	return nil
}

// drop removes code and returns its former index.
func (s *FundSet) drop(code int) int {
	delete(s.funds, code)
	for i, c := range s.order {
		if c == code {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return i
		}
	}
	return len(s.order)
}
