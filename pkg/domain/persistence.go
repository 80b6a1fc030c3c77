package domain

import "context"

// DatasetLoader supplies the population once at startup. Implementations live
// under internal/infra and read from memory, SQL databases, or blob documents.
type DatasetLoader interface {
	Load(ctx context.Context) (Dataset, error)
}

// DatasetWriter is implemented by backends that can be seeded with a dataset.
type DatasetWriter interface {
	Save(ctx context.Context, ds Dataset) error
}

// DatasetStore is a backend that can both supply and persist a dataset.
type DatasetStore interface {
	DatasetLoader
	DatasetWriter
	Close() error
}
