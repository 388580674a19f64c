// Package profiles holds the per-crop-kind optimal condition reference data.
package profiles

import (
	"fmt"
	"sort"

	"github.com/dukex/agroops/pkg/models"
)

// Store is a read-only set of profiles keyed by crop kind.
type Store struct {
	byKind map[string]models.OptimalConditionProfile
}

// NewStore validates and indexes the given profiles.
func NewStore(profiles []models.OptimalConditionProfile) (*Store, error) {
	store := &Store{byKind: make(map[string]models.OptimalConditionProfile, len(profiles))}

	for _, profile := range profiles {
		if err := profile.Validate(); err != nil {
			return nil, err
		}

		if _, exists := store.byKind[profile.Kind]; exists {
			return nil, fmt.Errorf("%w: duplicate profile kind %q", models.ErrValidationFailed, profile.Kind)
		}

		store.byKind[profile.Kind] = profile
	}

	return store, nil
}

// Get returns the profile for a crop kind or models.ErrProfileNotFound.
func (s *Store) Get(kind string) (models.OptimalConditionProfile, error) {
	profile, ok := s.byKind[kind]
	if !ok {
		return models.OptimalConditionProfile{}, fmt.Errorf("%w: %q", models.ErrProfileNotFound, kind)
	}

	return profile, nil
}

// List returns all profiles sorted by kind.
func (s *Store) List() []models.OptimalConditionProfile {
	list := make([]models.OptimalConditionProfile, 0, len(s.byKind))
	for _, profile := range s.byKind {
		list = append(list, profile)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Kind < list[j].Kind
	})

	return list
}
