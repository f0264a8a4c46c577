// Package pricing turns a window configuration into an itemised, VAT-inclusive quote.
//
// Rule data is an immutable RuleSet value: DefaultRuleSet builds the shipped parameters,
// WithOverrides derives a patched copy, and Calculate reads whatever value it is handed.
// Unknown enum keys always price at zero so a quote is never refused over an unrecognised option.
package pricing

import (
	"sort"

	domain "github.com/sash-studio/api/internal/domain"
)

// SizeTier maps areas up to and including MaxSquareMeters onto a price-per-area multiplier.
type SizeTier struct {
	MaxSquareMeters float64
	Multiplier      float64
}

// DiscountTier grants Fraction off the unit price once the order reaches MinQuantity windows.
type DiscountTier struct {
	MinQuantity int
	Fraction    float64
}

// RuleSet holds every pricing parameter. Values are treated as read-only once built;
// derive a modified copy with Clone or WithOverrides.
type RuleSet struct {
	BasePricePerSqm        float64
	SizeTiers              []SizeTier
	FallbackSizeMultiplier float64

	// BarsPerStyle has no entry for custom layouts: they carry no bar pricing.
	BarsPerStyle map[domain.BarStyle]int
	PricePerBar  float64

	GlassTypeSurcharges   map[domain.GlassType]float64
	GlassFinishSurcharges map[domain.GlassFinish]float64
	LaminatedPricePerSqm  float64

	// OpeningAdjustments are non-positive: an opening type can only reduce the price.
	OpeningAdjustments map[domain.OpeningType]float64

	// ColorSurchargeFractions are fractions of the base price, not flat amounts.
	ColorSurchargeFractions map[domain.FrameColor]float64

	KeyLocksSurcharge float64
	PAS24Surcharge    float64

	QuantityDiscountTiers []DiscountTier
	VATRate               float64
}

const (
	defaultBasePricePerSqm        = 900
	defaultFallbackSizeMultiplier = 0.8
	defaultPricePerBar            = 15
	defaultLaminatedPricePerSqm   = 30
	defaultKeyLocksSurcharge      = 40
	defaultVATRate                = 0.20
)

// DefaultRuleSet returns the shipped rule data.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		BasePricePerSqm: defaultBasePricePerSqm,
		SizeTiers: []SizeTier{
			{MaxSquareMeters: 0.6, Multiplier: 1.25},
			{MaxSquareMeters: 1.0, Multiplier: 1.0},
			{MaxSquareMeters: 1.5, Multiplier: 0.95},
			{MaxSquareMeters: 2.0, Multiplier: 0.9},
			{MaxSquareMeters: 3.0, Multiplier: 0.85},
			{MaxSquareMeters: 999, Multiplier: 0.8},
		},
		FallbackSizeMultiplier: defaultFallbackSizeMultiplier,
		BarsPerStyle: map[domain.BarStyle]int{
			domain.BarStyle1Over1: 0,
			domain.BarStyle2Over2: 4,
			domain.BarStyle4Over4: 8,
			domain.BarStyle6Over6: 10,
		},
		PricePerBar: defaultPricePerBar,
		GlassTypeSurcharges: map[domain.GlassType]float64{
			domain.GlassTypeDouble:  0,
			domain.GlassTypeTriple:  150,
			domain.GlassTypePassive: 250,
		},
		GlassFinishSurcharges: map[domain.GlassFinish]float64{
			domain.GlassFinishClear:   0,
			domain.GlassFinishFrosted: 80,
		},
		LaminatedPricePerSqm: defaultLaminatedPricePerSqm,
		OpeningAdjustments: map[domain.OpeningType]float64{
			domain.OpeningBoth:   0,
			domain.OpeningBottom: -30,
			domain.OpeningFixed:  -50,
		},
		ColorSurchargeFractions: map[domain.FrameColor]float64{
			domain.FrameColorWhite: 0,
			domain.FrameColorCream: 0.05,
			domain.FrameColorGrey:  0.05,
			domain.FrameColorBlack: 0.05,
			domain.FrameColorGreen: 0.05,
			domain.FrameColorOak:   0.20,
		},
		KeyLocksSurcharge: defaultKeyLocksSurcharge,
		PAS24Surcharge:    0,
		QuantityDiscountTiers: []DiscountTier{
			{MinQuantity: 1, Fraction: 0},
			{MinQuantity: 6, Fraction: 0.05},
			{MinQuantity: 12, Fraction: 0.10},
			{MinQuantity: 24, Fraction: 0.15},
		},
		VATRate: defaultVATRate,
	}
}

// Clone returns a deep copy whose tiers are sorted ascending.
func (r *RuleSet) Clone() *RuleSet {
	if r == nil {
		return nil
	}
	out := *r
	out.SizeTiers = append([]SizeTier(nil), r.SizeTiers...)
	sort.SliceStable(out.SizeTiers, func(i, j int) bool {
		return out.SizeTiers[i].MaxSquareMeters < out.SizeTiers[j].MaxSquareMeters
	})
	out.QuantityDiscountTiers = append([]DiscountTier(nil), r.QuantityDiscountTiers...)
	sort.SliceStable(out.QuantityDiscountTiers, func(i, j int) bool {
		return out.QuantityDiscountTiers[i].MinQuantity < out.QuantityDiscountTiers[j].MinQuantity
	})
	out.BarsPerStyle = copyMap(r.BarsPerStyle)
	out.GlassTypeSurcharges = copyMap(r.GlassTypeSurcharges)
	out.GlassFinishSurcharges = copyMap(r.GlassFinishSurcharges)
	out.OpeningAdjustments = copyMap(r.OpeningAdjustments)
	out.ColorSurchargeFractions = copyMap(r.ColorSurchargeFractions)
	return &out
}

// SizeMultiplier returns the multiplier of the first tier whose bound covers the area.
// Bounds are inclusive; areas above every tier use the fallback multiplier.
func (r *RuleSet) SizeMultiplier(area float64) float64 {
	for _, tier := range r.SizeTiers {
		if area <= tier.MaxSquareMeters {
			return tier.Multiplier
		}
	}
	return r.FallbackSizeMultiplier
}

// QuantityDiscount returns the largest discount among tiers the quantity satisfies.
func (r *RuleSet) QuantityDiscount(quantity int) float64 {
	discount := 0.0
	for _, tier := range r.QuantityDiscountTiers {
		if quantity >= tier.MinQuantity && tier.Fraction > discount {
			discount = tier.Fraction
		}
	}
	return discount
}

// BarCount returns the number of priced bars for a style; custom and unknown styles have none.
func (r *RuleSet) BarCount(style domain.BarStyle) int {
	if count, ok := r.BarsPerStyle[style]; ok {
		return count
	}
	return 0
}

func (r *RuleSet) glassTypeSurcharge(glass domain.GlassType) float64 {
	if v, ok := r.GlassTypeSurcharges[glass]; ok {
		return v
	}
	return 0
}

func (r *RuleSet) glassFinishSurcharge(finish domain.GlassFinish) float64 {
	if v, ok := r.GlassFinishSurcharges[finish]; ok {
		return v
	}
	return 0
}

func (r *RuleSet) openingAdjustment(opening domain.OpeningType) float64 {
	if v, ok := r.OpeningAdjustments[opening]; ok {
		return v
	}
	return 0
}

func (r *RuleSet) colorSurchargeFraction(color domain.FrameColor) float64 {
	if v, ok := r.ColorSurchargeFractions[color]; ok {
		return v
	}
	return 0
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	out := make(map[K]V, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
