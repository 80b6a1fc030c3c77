// Package memory provides an in-process dataset backend used by default and in tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"ohana/pkg/domain"
)

var (
	_ domain.DatasetLoader = (*Store)(nil)
	_ domain.DatasetWriter = (*Store)(nil)
)

// Store holds a dataset in memory. Load returns a copy so callers cannot
// mutate the stored slices.
type Store struct {
	mu sync.RWMutex
	ds domain.Dataset
}

// NewStore constructs a store seeded with ds.
func NewStore(ds domain.Dataset) *Store {
	s := &Store{}
	s.ds = copyDataset(ds)
	return s
}

// Load implements domain.DatasetLoader.
func (s *Store) Load(ctx context.Context) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyDataset(s.ds), nil
}

// Save implements domain.DatasetWriter.
func (s *Store) Save(ctx context.Context, ds domain.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.ds = copyDataset(ds)
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func copyDataset(ds domain.Dataset) domain.Dataset {
	return domain.Dataset{
		People:    slices.Clone(ds.People),
		Locations: slices.Clone(ds.Locations),
	}
}
