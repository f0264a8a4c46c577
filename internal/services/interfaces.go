package services

import (
	"context"
	"time"

	domain "github.com/sash-studio/api/internal/domain"
	"github.com/sash-studio/api/internal/pricing"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	WindowConfiguration = domain.WindowConfiguration
	PriceBreakdown      = domain.PriceBreakdown
	Estimate            = domain.Estimate
	QuoteRequest        = domain.QuoteRequest
	SystemHealthReport  = domain.SystemHealthReport
)

// PricingCatalog is the read side of pricing.Catalog.
type PricingCatalog interface {
	Calculate(cfg domain.WindowConfiguration) domain.PriceBreakdown
	Rules() *pricing.RuleSet
	Overridden() bool
	Source() string
}

var _ PricingCatalog = (*pricing.Catalog)(nil)

// QuoteService prices configurations for anonymous visitors.
type QuoteService interface {
	Quote(ctx context.Context, cfg WindowConfiguration) Quote
	Rules(ctx context.Context) RulesSnapshot
}

// EstimateService saves and reads estimates owned by signed-in customers.
type EstimateService interface {
	SaveEstimate(ctx context.Context, cmd SaveEstimateCommand) (Estimate, error)
	ListEstimates(ctx context.Context, filter EstimateListFilter) ([]Estimate, error)
	GetEstimate(ctx context.Context, userID, estimateID string) (Estimate, error)
}

// QuoteRequestService records contact requests left by anonymous visitors.
type QuoteRequestService interface {
	SubmitQuoteRequest(ctx context.Context, cmd QuoteRequestCommand) (QuoteRequest, error)
}

// SystemService exposes build metadata and dependency health.
type SystemService interface {
	BuildInfo() BuildInfo
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}

const (
	EventEstimateSaved         = "estimate.saved"
	EventQuoteRequestSubmitted = "quote_request.submitted"
)

// Event is a domain notification delivered to downstream consumers.
type Event struct {
	Type       string
	ID         string
	OccurredAt time.Time
	Payload    any
}

// EventPublisher delivers events, typically to Pub/Sub.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Quote is a priced configuration plus the strings the configurator shows.
type Quote struct {
	Configuration WindowConfiguration
	Breakdown     PriceBreakdown
	Display       QuoteDisplay
}

// QuoteDisplay holds whole-pound en-GB strings and option display names.
type QuoteDisplay struct {
	UnitPrice    string
	TotalPrice   string
	TotalWithVAT string
	VATAmount    string
	ColorName    string
	StyleName    string
}

// RulesSnapshot describes the rule set in force.
type RulesSnapshot struct {
	Rules      *pricing.RuleSet
	Overridden bool
	Source     string
}

// SaveEstimateCommand saves cfg for UserID. Pricing is always recomputed.
type SaveEstimateCommand struct {
	UserID        string
	Configuration WindowConfiguration
}

// EstimateListFilter selects a customer's estimates. Limit defaults to 20 and is capped at 100.
type EstimateListFilter struct {
	UserID string
	Limit  int
}

// QuoteRequestCommand carries the anonymous visitor's submission.
type QuoteRequestCommand struct {
	Email         string
	Message       string
	Configuration WindowConfiguration
}

// BuildInfo captures runtime metadata exposed via health endpoints.
type BuildInfo struct {
	Version     string
	CommitSHA   string
	Environment string
	StartedAt   time.Time
}

type eventLogger = func(context.Context, string, map[string]any)

func nopLogger(context.Context, string, map[string]any) {}
