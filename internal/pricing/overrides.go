package pricing

import (
	"math"

	domain "github.com/sash-studio/api/internal/domain"
)

// WithOverrides returns a copy of the rule set with every supplied override applied.
// The receiver is left untouched.
//
// Opening overrides are stored as -|v|: an opening type is always a reduction, so a
// source that records the adjustment as a positive amount still lowers the price.
func (r *RuleSet) WithOverrides(o domain.PricingOverrides) *RuleSet {
	out := r.Clone()
	if out == nil {
		out = DefaultRuleSet()
	}

	if o.BarPrice != nil {
		out.PricePerBar = *o.BarPrice
	}
	if o.GlassTriplePrice != nil {
		out.GlassTypeSurcharges[domain.GlassTypeTriple] = *o.GlassTriplePrice
	}
	if o.GlassPassivePrice != nil {
		out.GlassTypeSurcharges[domain.GlassTypePassive] = *o.GlassPassivePrice
	}
	if o.GlassFrostedPrice != nil {
		out.GlassFinishSurcharges[domain.GlassFinishFrosted] = *o.GlassFrostedPrice
	}
	if o.OpeningBottomPrice != nil {
		out.OpeningAdjustments[domain.OpeningBottom] = asReduction(*o.OpeningBottomPrice)
	}
	if o.OpeningFixedPrice != nil {
		out.OpeningAdjustments[domain.OpeningFixed] = asReduction(*o.OpeningFixedPrice)
	}
	return out
}

func asReduction(v float64) float64 {
	if v == 0 {
		return 0
	}
	return -math.Abs(v)
}
