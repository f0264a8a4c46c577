package repositories

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	domain "github.com/sash-studio/api/internal/domain"
)

// Override field names shared by every pricing_config store.
const (
	FieldBarPrice           = "bar_price"
	FieldGlassTriplePrice   = "glass_triple_price"
	FieldGlassPassivePrice  = "glass_passive_price"
	FieldGlassFrostedPrice  = "glass_frosted_price"
	FieldOpeningBottomPrice = "opening_bottom_price"
	FieldOpeningFixedPrice  = "opening_fixed_price"
)

// OverridesFromRecord reads the known override fields from a loosely typed record.
// Absent and null fields stay unset. Numbers may arrive as any numeric type or a
// numeric string; anything else is an error so a corrupt record never half-applies.
func OverridesFromRecord(record map[string]any) (domain.PricingOverrides, error) {
	var out domain.PricingOverrides
	targets := []struct {
		field string
		dst   **float64
	}{
		{FieldBarPrice, &out.BarPrice},
		{FieldGlassTriplePrice, &out.GlassTriplePrice},
		{FieldGlassPassivePrice, &out.GlassPassivePrice},
		{FieldGlassFrostedPrice, &out.GlassFrostedPrice},
		{FieldOpeningBottomPrice, &out.OpeningBottomPrice},
		{FieldOpeningFixedPrice, &out.OpeningFixedPrice},
	}
	for _, target := range targets {
		raw, ok := record[target.field]
		if !ok || raw == nil {
			continue
		}
		v, err := toFloat(raw)
		if err != nil {
			return domain.PricingOverrides{}, fmt.Errorf("pricing_config.%s: %w", target.field, err)
		}
		*target.dst = &v
	}
	return out, nil
}

func toFloat(raw any) (float64, error) {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int32:
		v = float64(n)
	case int64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		v = f
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %v", v)
	}
	return v, nil
}
