// Package repositories declares the persistence boundaries used by services.
package repositories

import (
	"context"
	"errors"

	domain "github.com/sash-studio/api/internal/domain"
)

// RepositoryError classifies persistence failures for services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// IsNotFound reports whether err is a RepositoryError for a missing record.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsUnavailable reports whether err is a transient RepositoryError.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}

// PricingConfigRepository reads the single pricing override record. A missing record
// yields empty overrides rather than an error.
type PricingConfigRepository interface {
	LoadOverrides(ctx context.Context) (domain.PricingOverrides, error)
}

// EstimateRepository persists saved estimates.
type EstimateRepository interface {
	Insert(ctx context.Context, estimate domain.Estimate) error
	FindByID(ctx context.Context, estimateID string) (domain.Estimate, error)
	// ListByUser returns at most limit estimates owned by userID, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Estimate, error)
}

// QuoteRequestRepository persists anonymous quote requests.
type QuoteRequestRepository interface {
	Insert(ctx context.Context, request domain.QuoteRequest) error
}

// HealthRepository reports the status of downstream dependencies.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
