// Package document reads pricing rule overrides from a YAML document on disk or in Cloud Storage.
//
// The document is a flat mapping using the pricing_config column names:
//
//	bar_price: 20
//	glass_triple_price: 175
//	opening_fixed_price: null
package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	domain "github.com/sash-studio/api/internal/domain"
	"github.com/sash-studio/api/internal/platform/storage"
	"github.com/sash-studio/api/internal/repositories"
)

// ErrDocumentNotFound is returned by a Source when the document does not exist.
var ErrDocumentNotFound = errors.New("document: not found")

// Source fetches the raw override document.
type Source interface {
	Read(ctx context.Context) ([]byte, error)
	Describe() string
}

// ObjectReader is the subset of storage.ObjectReader used by ObjectSource.
type ObjectReader interface {
	ReadObject(ctx context.Context, bucket, object string) ([]byte, error)
}

// FileSource reads a local file.
type FileSource struct {
	Path string
}

// Read returns ErrDocumentNotFound for a missing file.
func (s FileSource) Read(context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.Path, ErrDocumentNotFound)
	}
	return data, err
}

// Describe names the file.
func (s FileSource) Describe() string { return "file:" + s.Path }

// ObjectSource reads gs://Bucket/Object.
type ObjectSource struct {
	Reader ObjectReader
	Bucket string
	Object string
}

// Read maps a missing object to ErrDocumentNotFound.
func (s ObjectSource) Read(ctx context.Context) ([]byte, error) {
	if s.Reader == nil {
		return nil, errors.New("document: object reader is nil")
	}
	data, err := s.Reader.ReadObject(ctx, s.Bucket, s.Object)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, fmt.Errorf("%s: %w", s.Describe(), ErrDocumentNotFound)
	}
	return data, err
}

// Describe names the object.
func (s ObjectSource) Describe() string { return "gs://" + s.Bucket + "/" + s.Object }

// PricingConfigRepository decodes overrides from a Source.
type PricingConfigRepository struct {
	source Source
}

var _ repositories.PricingConfigRepository = (*PricingConfigRepository)(nil)

// NewPricingConfigRepository wraps source.
func NewPricingConfigRepository(source Source) (*PricingConfigRepository, error) {
	if source == nil {
		return nil, errors.New("document: pricing config repository requires source")
	}
	return &PricingConfigRepository{source: source}, nil
}

// LoadOverrides returns empty overrides for a missing or blank document.
func (r *PricingConfigRepository) LoadOverrides(ctx context.Context) (domain.PricingOverrides, error) {
	data, err := r.source.Read(ctx)
	if errors.Is(err, ErrDocumentNotFound) {
		return domain.PricingOverrides{}, nil
	}
	if err != nil {
		return domain.PricingOverrides{}, fmt.Errorf("document: read %s: %w", r.source.Describe(), err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return domain.PricingOverrides{}, nil
	}

	var record map[string]any
	if err := yaml.Unmarshal(data, &record); err != nil {
		return domain.PricingOverrides{}, fmt.Errorf("document: decode %s: %w", r.source.Describe(), err)
	}
	overrides, err := repositories.OverridesFromRecord(record)
	if err != nil {
		return domain.PricingOverrides{}, fmt.Errorf("document: %s: %w", r.source.Describe(), err)
	}
	return overrides, nil
}
