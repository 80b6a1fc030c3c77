// Package dataset reads and writes whole-population documents (JSON or YAML)
// and serves them from a blob store as a dataset backend.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ohana/pkg/domain"
)

// Format is a document encoding.
type Format string

const (
	// FormatJSON is the default document encoding.
	FormatJSON Format = "json"
	// FormatYAML is selected by .yaml or .yml extensions.
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a file name or blob key.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ContentType returns the MIME type used when storing a document of format f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Decode parses a document. Unknown fields are rejected so typos in a
// hand-written dataset surface at load time.
func Decode(r io.Reader, format Format) (domain.Dataset, error) {
	var ds domain.Dataset
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
			return domain.Dataset{}, fmt.Errorf("decode yaml dataset: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&ds); err != nil {
			return domain.Dataset{}, fmt.Errorf("decode json dataset: %w", err)
		}
	default:
		return domain.Dataset{}, fmt.Errorf("unsupported dataset format %q", format)
	}
	return ds, nil
}

// Encode writes ds to w. Nil slices are written as empty lists.
func Encode(w io.Writer, format Format, ds domain.Dataset) error {
	if ds.People == nil {
		ds.People = []domain.Person{}
	}
	if ds.Locations == nil {
		ds.Locations = []domain.Location{}
	}
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ds); err != nil {
			return fmt.Errorf("encode yaml dataset: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ds); err != nil {
			return fmt.Errorf("encode json dataset: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported dataset format %q", format)
	}
}

// Marshal encodes ds into a byte slice.
func Marshal(format Format, ds domain.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, format, ds); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadFile decodes the document at path, choosing the format from its extension.
func ReadFile(path string) (domain.Dataset, error) {
	f, err := os.Open(path) // #nosec G304 -- operator supplied path
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f, FormatFor(path))
}
