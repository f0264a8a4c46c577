package pricing

import (
	"math"

	domain "github.com/sash-studio/api/internal/domain"
)

// WithDefaults fills the fields a caller left unset from the default configuration.
// Non-positive or non-finite dimensions fall back to the default size, as does a pair
// whose area is not finite. A quantity below one becomes one; larger quantities are
// priced as given. Unknown enum keys are kept and price at zero.
func WithDefaults(cfg domain.WindowConfiguration) domain.WindowConfiguration {
	def := domain.DefaultWindowConfiguration()

	if !finitePositive(cfg.WidthMM) {
		cfg.WidthMM = def.WidthMM
	}
	if !finitePositive(cfg.HeightMM) {
		cfg.HeightMM = def.HeightMM
	}
	if area := (cfg.WidthMM / 1000) * (cfg.HeightMM / 1000); !finitePositive(area) {
		cfg.WidthMM, cfg.HeightMM = def.WidthMM, def.HeightMM
	}
	if cfg.Quantity < domain.MinQuantity {
		cfg.Quantity = domain.MinQuantity
	}

	if cfg.Style == "" {
		cfg.Style = def.Style
	}
	if cfg.GlassType == "" {
		cfg.GlassType = def.GlassType
	}
	if cfg.GlassFinish == "" {
		cfg.GlassFinish = def.GlassFinish
	}
	if cfg.Color == "" {
		cfg.Color = def.Color
	}
	if cfg.Hardware == "" {
		cfg.Hardware = def.Hardware
	}
	if cfg.Opening == "" {
		cfg.Opening = def.Opening
	}
	return cfg
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
