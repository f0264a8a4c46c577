package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sash-studio/api/internal/pricing"
)

const servicesMeterName = "github.com/sash-studio/api/internal/services"

// QuoteServiceDeps bundles collaborators required to construct a quote service.
type QuoteServiceDeps struct {
	Catalog PricingCatalog
	Meter   metric.Meter
}

type quoteService struct {
	catalog PricingCatalog
	quotes  metric.Int64Counter
}

var _ QuoteService = (*quoteService)(nil)

// NewQuoteService prices configurations against the catalog's current rule set.
func NewQuoteService(deps QuoteServiceDeps) (QuoteService, error) {
	if deps.Catalog == nil {
		return nil, errors.New("quote service: catalog is required")
	}
	meter := deps.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(servicesMeterName)
	}
	svc := &quoteService{catalog: deps.Catalog}
	counter, err := meter.Int64Counter(
		"pricing.quotes",
		metric.WithDescription("Count of quotes calculated by style and glass type"),
	)
	if err == nil {
		svc.quotes = counter
	}
	return svc, nil
}

func (s *quoteService) Quote(ctx context.Context, cfg WindowConfiguration) Quote {
	cfg = normalizeConfiguration(cfg)
	breakdown := s.catalog.Calculate(cfg)

	if s.quotes != nil {
		s.quotes.Add(ctx, 1, metric.WithAttributes(
			attribute.String("style", string(cfg.Style)),
			attribute.String("glass_type", string(cfg.GlassType)),
		))
	}

	return Quote{
		Configuration: cfg,
		Breakdown:     breakdown,
		Display:       displayFor(cfg, breakdown),
	}
}

func (s *quoteService) Rules(context.Context) RulesSnapshot {
	return RulesSnapshot{
		Rules:      s.catalog.Rules(),
		Overridden: s.catalog.Overridden(),
		Source:     s.catalog.Source(),
	}
}

func displayFor(cfg WindowConfiguration, b PriceBreakdown) QuoteDisplay {
	return QuoteDisplay{
		UnitPrice:    pricing.FormatPrice(b.UnitPrice),
		TotalPrice:   pricing.FormatPrice(b.TotalPrice),
		TotalWithVAT: pricing.FormatPrice(b.TotalWithVAT),
		VATAmount:    pricing.FormatPrice(b.VATAmount),
		ColorName:    cfg.Color.DisplayName(),
		StyleName:    cfg.Style.DisplayName(),
	}
}
