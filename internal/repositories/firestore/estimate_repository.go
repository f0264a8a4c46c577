package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"

	domain "github.com/sash-studio/api/internal/domain"
	pfirestore "github.com/sash-studio/api/internal/platform/firestore"
	"github.com/sash-studio/api/internal/repositories"
)

const estimatesCollection = "estimates"

// EstimateRepository stores estimates in the top-level estimates collection.
type EstimateRepository struct {
	base *pfirestore.BaseRepository[estimateDocument]
}

var _ repositories.EstimateRepository = (*EstimateRepository)(nil)

// NewEstimateRepository binds the repository to provider.
func NewEstimateRepository(provider *pfirestore.Provider) (*EstimateRepository, error) {
	if provider == nil {
		return nil, errors.New("estimate repository requires firestore provider")
	}
	return &EstimateRepository{
		base: pfirestore.NewBaseRepository[estimateDocument](provider, estimatesCollection),
	}, nil
}

// Insert creates the estimate. An existing id is reported as a conflict.
func (r *EstimateRepository) Insert(ctx context.Context, estimate domain.Estimate) error {
	return r.base.Create(ctx, estimate.ID, encodeEstimate(estimate))
}

// FindByID loads one estimate.
func (r *EstimateRepository) FindByID(ctx context.Context, estimateID string) (domain.Estimate, error) {
	doc, err := r.base.Get(ctx, estimateID)
	if err != nil {
		return domain.Estimate{}, err
	}
	return decodeEstimate(doc.ID, doc.Data), nil
}

// ListByUser relies on the composite index (userId ASC, createdAt DESC).
func (r *EstimateRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Estimate, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		q = q.Where("userId", "==", userID).OrderBy("createdAt", firestore.Desc)
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Estimate, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeEstimate(doc.ID, doc.Data))
	}
	return out, nil
}
