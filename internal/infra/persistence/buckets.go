// Package persistence holds the bucket codec shared by the SQL dataset
// backends. A dataset is stored as one JSON array per bucket in a two-column
// state table, so both backends read and write the same payloads.
package persistence

import (
	"encoding/json"
	"fmt"

	"ohana/pkg/domain"
)

// Bucket names in the state table.
const (
	BucketPeople    = "people"
	BucketLocations = "locations"
)

// Buckets lists every bucket in write order.
var Buckets = []string{BucketPeople, BucketLocations}

// EncodeBucket marshals the records of ds belonging to bucket.
func EncodeBucket(ds domain.Dataset, bucket string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch bucket {
	case BucketPeople:
		data, err = json.Marshal(nonNil(ds.People))
	case BucketLocations:
		data, err = json.Marshal(nonNil(ds.Locations))
	default:
		return nil, fmt.Errorf("unknown bucket %q", bucket)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", bucket, err)
	}
	return data, nil
}

// DecodeBucket unmarshals payload into the field of ds belonging to bucket.
// Unknown buckets are ignored so older binaries can read newer tables.
func DecodeBucket(ds *domain.Dataset, bucket string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	var target any
	switch bucket {
	case BucketPeople:
		target = &ds.People
	case BucketLocations:
		target = &ds.Locations
	default:
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
