package handlers

import (
	"time"

	domain "github.com/sash-studio/api/internal/domain"
	"github.com/sash-studio/api/internal/pricing"
	"github.com/sash-studio/api/internal/services"
)

// configurationRequest is a partial configuration; absent fields take the defaults.
type configurationRequest struct {
	Width       *float64 `json:"width"`
	Height      *float64 `json:"height"`
	Quantity    *int     `json:"quantity"`
	Style       *string  `json:"style"`
	GlassType   *string  `json:"glassType"`
	GlassFinish *string  `json:"glassFinish"`
	Color       *string  `json:"color"`
	Hardware    *string  `json:"hardware"`
	Opening     *string  `json:"opening"`
	PAS24       *bool    `json:"pas24"`
	Laminated   *bool    `json:"laminated"`
	KeyLocks    *bool    `json:"keyLocks"`
}

func (c *configurationRequest) toDomain() domain.WindowConfiguration {
	cfg := domain.DefaultWindowConfiguration()
	if c == nil {
		return cfg
	}
	if c.Width != nil {
		cfg.WidthMM = *c.Width
	}
	if c.Height != nil {
		cfg.HeightMM = *c.Height
	}
	if c.Quantity != nil {
		cfg.Quantity = *c.Quantity
	}
	if c.Style != nil {
		cfg.Style = domain.BarStyle(*c.Style)
	}
	if c.GlassType != nil {
		cfg.GlassType = domain.GlassType(*c.GlassType)
	}
	if c.GlassFinish != nil {
		cfg.GlassFinish = domain.GlassFinish(*c.GlassFinish)
	}
	if c.Color != nil {
		cfg.Color = domain.FrameColor(*c.Color)
	}
	if c.Hardware != nil {
		cfg.Hardware = domain.Hardware(*c.Hardware)
	}
	if c.Opening != nil {
		cfg.Opening = domain.OpeningType(*c.Opening)
	}
	if c.PAS24 != nil {
		cfg.PAS24 = *c.PAS24
	}
	if c.Laminated != nil {
		cfg.Laminated = *c.Laminated
	}
	if c.KeyLocks != nil {
		cfg.KeyLocks = *c.KeyLocks
	}
	return cfg
}

type configurationPayload struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Quantity    int     `json:"quantity"`
	Style       string  `json:"style"`
	GlassType   string  `json:"glassType"`
	GlassFinish string  `json:"glassFinish"`
	Color       string  `json:"color"`
	Hardware    string  `json:"hardware"`
	Opening     string  `json:"opening"`
	PAS24       bool    `json:"pas24"`
	Laminated   bool    `json:"laminated"`
	KeyLocks    bool    `json:"keyLocks"`
}

func buildConfigurationPayload(cfg domain.WindowConfiguration) configurationPayload {
	return configurationPayload{
		Width:       cfg.WidthMM,
		Height:      cfg.HeightMM,
		Quantity:    cfg.Quantity,
		Style:       string(cfg.Style),
		GlassType:   string(cfg.GlassType),
		GlassFinish: string(cfg.GlassFinish),
		Color:       string(cfg.Color),
		Hardware:    string(cfg.Hardware),
		Opening:     string(cfg.Opening),
		PAS24:       cfg.PAS24,
		Laminated:   cfg.Laminated,
		KeyLocks:    cfg.KeyLocks,
	}
}

type breakdownPayload struct {
	BasePrice      float64 `json:"basePrice"`
	BarsPrice      float64 `json:"barsPrice"`
	GlassPrice     float64 `json:"glassPrice"`
	OptionsPrice   float64 `json:"optionsPrice"`
	Subtotal       float64 `json:"subtotal"`
	Discount       float64 `json:"discount"`
	DiscountAmount float64 `json:"discountAmount"`
	UnitPrice      float64 `json:"unitPrice"`
	TotalPrice     float64 `json:"totalPrice"`
	VATAmount      float64 `json:"vatAmount"`
	TotalWithVAT   float64 `json:"totalWithVat"`
	SquareMeters   float64 `json:"sqm"`
	SizeMultiplier float64 `json:"sizeMultiplier"`
	Quantity       int     `json:"quantity"`
}

func buildBreakdownPayload(b domain.PriceBreakdown) breakdownPayload {
	return breakdownPayload(b)
}

type displayPayload struct {
	UnitPrice    string `json:"unitPrice"`
	TotalPrice   string `json:"totalPrice"`
	TotalWithVAT string `json:"totalWithVat"`
	VATAmount    string `json:"vatAmount"`
	ColorName    string `json:"colorName"`
	StyleName    string `json:"styleName"`
}

type quotePayload struct {
	Configuration configurationPayload `json:"configuration"`
	Breakdown     breakdownPayload     `json:"breakdown"`
	Display       displayPayload       `json:"display"`
}

func buildQuotePayload(q services.Quote) quotePayload {
	return quotePayload{
		Configuration: buildConfigurationPayload(q.Configuration),
		Breakdown:     buildBreakdownPayload(q.Breakdown),
		Display:       displayPayload(q.Display),
	}
}

type sizeTierPayload struct {
	MaxSquareMeters float64 `json:"maxSqm"`
	Multiplier      float64 `json:"multiplier"`
}

type discountTierPayload struct {
	MinQuantity int     `json:"minQuantity"`
	Fraction    float64 `json:"fraction"`
}

type rulesPayload struct {
	BasePricePerSqm         float64               `json:"basePricePerSqm"`
	SizeTiers               []sizeTierPayload     `json:"sizeMultiplierTiers"`
	FallbackSizeMultiplier  float64               `json:"fallbackSizeMultiplier"`
	BarsPerStyle            map[string]int        `json:"barsPerStyle"`
	PricePerBar             float64               `json:"pricePerBar"`
	GlassTypeSurcharges     map[string]float64    `json:"glassTypeSurcharge"`
	GlassFinishSurcharges   map[string]float64    `json:"glassFinishSurcharge"`
	LaminatedPricePerSqm    float64               `json:"laminatedPricePerSqm"`
	OpeningAdjustments      map[string]float64    `json:"openingAdjustment"`
	ColorSurchargeFractions map[string]float64    `json:"colorSurchargeFraction"`
	KeyLocksSurcharge       float64               `json:"keyLocksSurcharge"`
	PAS24Surcharge          float64               `json:"pas24Surcharge"`
	QuantityDiscountTiers   []discountTierPayload `json:"quantityDiscountTiers"`
	VATRate                 float64               `json:"vatRate"`
}

type rulesResponse struct {
	Rules      rulesPayload `json:"rules"`
	Overridden bool         `json:"overridden"`
	Source     string       `json:"source"`
}

func buildRulesPayload(r *pricing.RuleSet) rulesPayload {
	if r == nil {
		r = pricing.DefaultRuleSet()
	}
	out := rulesPayload{
		BasePricePerSqm:         r.BasePricePerSqm,
		FallbackSizeMultiplier:  r.FallbackSizeMultiplier,
		BarsPerStyle:            stringKeys(r.BarsPerStyle),
		PricePerBar:             r.PricePerBar,
		GlassTypeSurcharges:     stringKeys(r.GlassTypeSurcharges),
		GlassFinishSurcharges:   stringKeys(r.GlassFinishSurcharges),
		LaminatedPricePerSqm:    r.LaminatedPricePerSqm,
		OpeningAdjustments:      stringKeys(r.OpeningAdjustments),
		ColorSurchargeFractions: stringKeys(r.ColorSurchargeFractions),
		KeyLocksSurcharge:       r.KeyLocksSurcharge,
		PAS24Surcharge:          r.PAS24Surcharge,
		VATRate:                 r.VATRate,
	}
	for _, tier := range r.SizeTiers {
		out.SizeTiers = append(out.SizeTiers, sizeTierPayload(tier))
	}
	for _, tier := range r.QuantityDiscountTiers {
		out.QuantityDiscountTiers = append(out.QuantityDiscountTiers, discountTierPayload(tier))
	}
	return out
}

func stringKeys[K ~string, V any](in map[K]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}

type estimatePayload struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	Configuration configurationPayload `json:"configuration"`
	Pricing       breakdownPayload     `json:"pricing"`
	CreatedAt     string               `json:"createdAt"`
}

func buildEstimatePayload(e domain.Estimate) estimatePayload {
	return estimatePayload{
		ID:            e.ID,
		Status:        string(e.Status),
		Configuration: buildConfigurationPayload(e.Configuration),
		Pricing:       buildBreakdownPayload(e.Pricing),
		CreatedAt:     formatTime(e.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
