package core

import (
	"context"
	"fmt"

	"ohana/internal/blob"
	"ohana/internal/config"
	"ohana/internal/dataset"
	"ohana/internal/infra/persistence/memory"
	"ohana/internal/infra/persistence/postgres"
	"ohana/internal/infra/persistence/sqlite"
	"ohana/pkg/domain"
)

// StorageDriver identifies a concrete dataset backend.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // built-in sample population
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageBlob     StorageDriver = "blob"     // JSON/YAML document in a blob store
)

// DatasetStore is re-exported so callers of OpenDatasetStore need not import pkg/domain.
type DatasetStore = domain.DatasetStore

// OpenDatasetStore selects a backend from configuration. An empty driver
// falls back to the in-memory sample population.
func OpenDatasetStore(ctx context.Context, cfg config.Storage) (DatasetStore, error) {
	driver := StorageDriver(cfg.Driver)
	if driver == "" {
		driver = StorageMemory
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(memory.Sample()), nil
	case StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath)
	case StoragePostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	case StorageBlob:
		store, err := blob.Open(ctx, cfg.Blob)
		if err != nil {
			return nil, fmt.Errorf("open blob store: %w", err)
		}
		return dataset.NewBlobLoader(store, cfg.Blob.Key), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// LoadSnapshot reads the dataset from loader and builds a snapshot from it.
func LoadSnapshot(ctx context.Context, loader domain.DatasetLoader) (*Snapshot, error) {
	ds, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return Build(ds)
}
