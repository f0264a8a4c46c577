package firestore

import (
	"context"
	"errors"

	domain "github.com/sash-studio/api/internal/domain"
	pfirestore "github.com/sash-studio/api/internal/platform/firestore"
	"github.com/sash-studio/api/internal/repositories"
)

const (
	pricingConfigCollection = "pricing_config"
	pricingConfigDocID      = "1"
)

// PricingConfigRepository reads overrides from pricing_config/1.
type PricingConfigRepository struct {
	provider *pfirestore.Provider
}

var _ repositories.PricingConfigRepository = (*PricingConfigRepository)(nil)

// NewPricingConfigRepository binds the repository to provider.
func NewPricingConfigRepository(provider *pfirestore.Provider) (*PricingConfigRepository, error) {
	if provider == nil {
		return nil, errors.New("pricing config repository requires firestore provider")
	}
	return &PricingConfigRepository{provider: provider}, nil
}

// LoadOverrides returns the override record, or empty overrides when the document is absent.
func (r *PricingConfigRepository) LoadOverrides(ctx context.Context) (domain.PricingOverrides, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return domain.PricingOverrides{}, err
	}
	snap, err := client.Collection(pricingConfigCollection).Doc(pricingConfigDocID).Get(ctx)
	if err != nil {
		wrapped := pfirestore.WrapError("pricing_config.get", err)
		if repositories.IsNotFound(wrapped) {
			return domain.PricingOverrides{}, nil
		}
		return domain.PricingOverrides{}, wrapped
	}
	return repositories.OverridesFromRecord(snap.Data())
}

// Ping confirms the pricing_config collection is reachable.
func (r *PricingConfigRepository) Ping(ctx context.Context) error {
	return r.provider.Ping(ctx, pricingConfigCollection)
}
