// Package blob re-exports the blob abstractions and opens the configured backend.
package blob

import (
	"context"
	"fmt"

	"ohana/internal/blob/core"
	"ohana/internal/config"
	"ohana/internal/infra/blob/fs"
	"ohana/internal/infra/blob/memory"
	"ohana/internal/infra/blob/s3"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = core.ErrNotFound

// Open selects a Store implementation from configuration. An empty driver means fs.
func Open(ctx context.Context, cfg config.Blob) (Store, error) {
	driver := Driver(cfg.Driver)
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return fs.New(cfg.Root)
	case DriverS3:
		return s3.New(ctx, s3.Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		})
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewFilesystem returns a filesystem-backed store rooted at root.
func NewFilesystem(root string) (Store, error) { return fs.New(root) }

// NewMemory returns an empty in-memory store.
func NewMemory() Store { return memory.New() }

// NewMockS3ForTests returns an S3 store backed by an in-process fake endpoint.
func NewMockS3ForTests() Store { return s3.NewMockForTests() }
