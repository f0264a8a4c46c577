package domain

import "time"

// EstimateStatus tracks where a saved estimate sits in the sales funnel.
type EstimateStatus string

const (
	EstimateStatusDraft     EstimateStatus = "draft"
	EstimateStatusSubmitted EstimateStatus = "submitted"
)

// Estimate is a priced configuration saved by a signed-in customer.
type Estimate struct {
	ID            string
	UserID        string
	Configuration WindowConfiguration
	Pricing       PriceBreakdown
	Status        EstimateStatus
	CreatedAt     time.Time
}

// QuoteRequest is a priced configuration left by an anonymous visitor together with a contact email.
type QuoteRequest struct {
	ID            string
	Email         string
	Message       string
	Configuration WindowConfiguration
	Pricing       PriceBreakdown
	CreatedAt     time.Time
}

// PricingOverrides carries the subset of rule parameters that may be replaced at startup.
// A nil field means the source did not supply a value.
type PricingOverrides struct {
	BarPrice           *float64
	GlassTriplePrice   *float64
	GlassPassivePrice  *float64
	GlassFrostedPrice  *float64
	OpeningBottomPrice *float64
	OpeningFixedPrice  *float64
}

// IsEmpty reports whether no override field is set.
func (o PricingOverrides) IsEmpty() bool {
	return o.BarPrice == nil &&
		o.GlassTriplePrice == nil &&
		o.GlassPassivePrice == nil &&
		o.GlassFrostedPrice == nil &&
		o.OpeningBottomPrice == nil &&
		o.OpeningFixedPrice == nil
}
