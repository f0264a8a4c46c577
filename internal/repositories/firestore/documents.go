package firestore

import (
	"time"

	domain "github.com/sash-studio/api/internal/domain"
)

type configurationDocument struct {
	WidthMM     float64 `firestore:"widthMm"`
	HeightMM    float64 `firestore:"heightMm"`
	Quantity    int     `firestore:"quantity"`
	Style       string  `firestore:"style"`
	GlassType   string  `firestore:"glassType"`
	GlassFinish string  `firestore:"glassFinish"`
	Color       string  `firestore:"color"`
	Hardware    string  `firestore:"hardware"`
	Opening     string  `firestore:"opening"`
	PAS24       bool    `firestore:"pas24"`
	Laminated   bool    `firestore:"laminated"`
	KeyLocks    bool    `firestore:"keyLocks"`
}

type pricingDocument struct {
	BasePrice      float64 `firestore:"basePrice"`
	BarsPrice      float64 `firestore:"barsPrice"`
	GlassPrice     float64 `firestore:"glassPrice"`
	OptionsPrice   float64 `firestore:"optionsPrice"`
	Subtotal       float64 `firestore:"subtotal"`
	Discount       float64 `firestore:"discount"`
	DiscountAmount float64 `firestore:"discountAmount"`
	UnitPrice      float64 `firestore:"unitPrice"`
	TotalPrice     float64 `firestore:"totalPrice"`
	VATAmount      float64 `firestore:"vatAmount"`
	TotalWithVAT   float64 `firestore:"totalWithVat"`
	SquareMeters   float64 `firestore:"sqm"`
	SizeMultiplier float64 `firestore:"sizeMultiplier"`
	Quantity       int     `firestore:"quantity"`
}

type estimateDocument struct {
	UserID        string                `firestore:"userId"`
	Status        string                `firestore:"status"`
	Configuration configurationDocument `firestore:"configuration"`
	Pricing       pricingDocument       `firestore:"pricing"`
	CreatedAt     time.Time             `firestore:"createdAt"`
}

type quoteRequestDocument struct {
	Email         string                `firestore:"email"`
	Message       string                `firestore:"message,omitempty"`
	Configuration configurationDocument `firestore:"configuration"`
	Pricing       pricingDocument       `firestore:"pricing"`
	CreatedAt     time.Time             `firestore:"createdAt"`
}

func encodeConfiguration(c domain.WindowConfiguration) configurationDocument {
	return configurationDocument{
		WidthMM:     c.WidthMM,
		HeightMM:    c.HeightMM,
		Quantity:    c.Quantity,
		Style:       string(c.Style),
		GlassType:   string(c.GlassType),
		GlassFinish: string(c.GlassFinish),
		Color:       string(c.Color),
		Hardware:    string(c.Hardware),
		Opening:     string(c.Opening),
		PAS24:       c.PAS24,
		Laminated:   c.Laminated,
		KeyLocks:    c.KeyLocks,
	}
}

func decodeConfiguration(d configurationDocument) domain.WindowConfiguration {
	return domain.WindowConfiguration{
		WidthMM:     d.WidthMM,
		HeightMM:    d.HeightMM,
		Quantity:    d.Quantity,
		Style:       domain.BarStyle(d.Style),
		GlassType:   domain.GlassType(d.GlassType),
		GlassFinish: domain.GlassFinish(d.GlassFinish),
		Color:       domain.FrameColor(d.Color),
		Hardware:    domain.Hardware(d.Hardware),
		Opening:     domain.OpeningType(d.Opening),
		PAS24:       d.PAS24,
		Laminated:   d.Laminated,
		KeyLocks:    d.KeyLocks,
	}
}

// pricingDocument mirrors domain.PriceBreakdown field for field.
func encodePricing(p domain.PriceBreakdown) pricingDocument {
	return pricingDocument(p)
}

func decodePricing(d pricingDocument) domain.PriceBreakdown {
	return domain.PriceBreakdown(d)
}

func encodeEstimate(e domain.Estimate) estimateDocument {
	return estimateDocument{
		UserID:        e.UserID,
		Status:        string(e.Status),
		Configuration: encodeConfiguration(e.Configuration),
		Pricing:       encodePricing(e.Pricing),
		CreatedAt:     e.CreatedAt.UTC(),
	}
}

func decodeEstimate(id string, d estimateDocument) domain.Estimate {
	return domain.Estimate{
		ID:            id,
		UserID:        d.UserID,
		Status:        domain.EstimateStatus(d.Status),
		Configuration: decodeConfiguration(d.Configuration),
		Pricing:       decodePricing(d.Pricing),
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

func encodeQuoteRequest(q domain.QuoteRequest) quoteRequestDocument {
	return quoteRequestDocument{
		Email:         q.Email,
		Message:       q.Message,
		Configuration: encodeConfiguration(q.Configuration),
		Pricing:       encodePricing(q.Pricing),
		CreatedAt:     q.CreatedAt.UTC(),
	}
}
