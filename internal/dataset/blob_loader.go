package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"ohana/internal/blob"
	"ohana/pkg/domain"
)

// DefaultKey is the blob key read when none is configured.
const DefaultKey = "dataset.json"

var (
	_ domain.DatasetLoader = (*BlobLoader)(nil)
	_ domain.DatasetWriter = (*BlobLoader)(nil)
)

// BlobLoader keeps the dataset as a single document in a blob store.
type BlobLoader struct {
	store blob.Store
	key   string
}

// NewBlobLoader returns a loader reading key from store.
func NewBlobLoader(store blob.Store, key string) *BlobLoader {
	if key == "" {
		key = DefaultKey
	}
	return &BlobLoader{store: store, key: key}
}

// Key returns the document key.
func (l *BlobLoader) Key() string { return l.key }

// Load fetches and decodes the document. A missing document yields an empty dataset.
func (l *BlobLoader) Load(ctx context.Context) (domain.Dataset, error) {
	_, rc, err := l.store.Get(ctx, l.key)
	if errors.Is(err, blob.ErrNotFound) {
		return domain.Dataset{}, nil
	}
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("get %s from %s: %w", l.key, l.store.Driver(), err)
	}
	defer func() { _ = rc.Close() }()
	return Decode(rc, FormatFor(l.key))
}

// Save encodes ds in the key's format and replaces the document.
func (l *BlobLoader) Save(ctx context.Context, ds domain.Dataset) error {
	format := FormatFor(l.key)
	data, err := Marshal(format, ds)
	if err != nil {
		return err
	}
	if _, err := l.store.Put(ctx, l.key, bytes.NewReader(data), blob.PutOptions{ContentType: format.ContentType()}); err != nil {
		return fmt.Errorf("put %s to %s: %w", l.key, l.store.Driver(), err)
	}
	return nil
}

// Close is a no-op; blob stores hold no long-lived handles.
func (l *BlobLoader) Close() error { return nil }
