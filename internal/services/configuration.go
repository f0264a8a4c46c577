package services

import (
	domain "github.com/sash-studio/api/internal/domain"
	"github.com/sash-studio/api/internal/pricing"
)

// normalizeConfiguration bounds what a caller may ask to be priced and then applies the
// engine's defaults, so the stored configuration matches the one that was priced.
func normalizeConfiguration(cfg domain.WindowConfiguration) domain.WindowConfiguration {
	cfg.WidthMM = capDimension(cfg.WidthMM)
	cfg.HeightMM = capDimension(cfg.HeightMM)
	cfg.Quantity = domain.ClampQuantity(cfg.Quantity)
	return pricing.WithDefaults(cfg)
}

func capDimension(mm float64) float64 {
	if mm > domain.MaxDimensionMM {
		return domain.MaxDimensionMM
	}
	return mm
}
