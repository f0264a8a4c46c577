package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	domain "github.com/sash-studio/api/internal/domain"
)

// Calculate prices a configuration against the supplied rule set. It never fails: absent
// fields take their defaults (see WithDefaults), unknown options contribute nothing and a
// nil rule set falls back to the default rules.
//
// The step order matters. Colour is a fraction of the size-adjusted base, the quantity
// discount applies to the per-window subtotal, and VAT is charged on the discounted total.
func Calculate(rules *RuleSet, cfg domain.WindowConfiguration) domain.PriceBreakdown {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	cfg = WithDefaults(cfg)

	area := (cfg.WidthMM / 1000) * (cfg.HeightMM / 1000)
	sizeMultiplier := rules.SizeMultiplier(area)
	basePrice := rules.BasePricePerSqm * area * sizeMultiplier

	barsPrice := float64(rules.BarCount(cfg.Style)) * rules.PricePerBar

	glassTypePrice := rules.glassTypeSurcharge(cfg.GlassType)
	glassFinishPrice := rules.glassFinishSurcharge(cfg.GlassFinish)
	laminatedPrice := 0.0
	if cfg.Laminated {
		laminatedPrice = rules.LaminatedPricePerSqm * area
	}

	openingPrice := rules.openingAdjustment(cfg.Opening)
	colorPrice := basePrice * rules.colorSurchargeFraction(cfg.Color)
	securityPrice := 0.0
	if cfg.KeyLocks {
		securityPrice += rules.KeyLocksSurcharge
	}
	if cfg.PAS24 {
		securityPrice += rules.PAS24Surcharge
	}

	glassPrice := glassTypePrice + glassFinishPrice + laminatedPrice
	optionsPrice := openingPrice + securityPrice + colorPrice
	subtotal := basePrice + barsPrice + glassPrice + optionsPrice

	discount := rules.QuantityDiscount(cfg.Quantity)
	discountAmount := subtotal * discount
	unitPrice := subtotal - discountAmount
	totalPrice := unitPrice * float64(cfg.Quantity)
	vatAmount := totalPrice * rules.VATRate
	totalWithVAT := totalPrice + vatAmount

	return domain.PriceBreakdown{
		BasePrice:      round2(basePrice),
		BarsPrice:      barsPrice,
		GlassPrice:     round2(glassPrice),
		OptionsPrice:   round2(optionsPrice),
		Subtotal:       round2(subtotal),
		Discount:       discount,
		DiscountAmount: round2(discountAmount),
		UnitPrice:      round2(unitPrice),
		TotalPrice:     round2(totalPrice),
		VATAmount:      round2(vatAmount),
		TotalWithVAT:   round2(totalWithVAT),
		SquareMeters:   round2(area),
		SizeMultiplier: sizeMultiplier,
		Quantity:       cfg.Quantity,
	}
}

// round2 rounds half away from zero on the shortest decimal form of v, so 1.005 becomes 1.01.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
