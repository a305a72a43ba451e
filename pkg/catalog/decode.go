package catalog

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the export format from a file extension, JSON by default.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads the records of an export: a JSON or YAML array of Record.
func Decode(r io.Reader, format Format) ([]Record, error) {
	var records []Record
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, errors.Errorf("decoding json catalog: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&records); err != nil {
			return nil, errors.Errorf("decoding yaml catalog: %w", err)
		}
	default:
		return nil, errors.Errorf("unknown catalog format %q", format)
	}
	return records, nil
}

// LoadFile decodes and loads the export stored at path.
func LoadFile(ctx context.Context, fs afero.Fs, path string) (*Catalog, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening catalog %s: %w", path, err)
	}
	defer f.Close()

	records, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, errors.Errorf("reading catalog %s: %w", path, err)
	}

	cat, err := Load(ctx, records)
	if err != nil {
		return nil, errors.Errorf("loading catalog %s: %w", path, err)
	}
	return cat, nil
}
