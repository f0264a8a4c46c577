package pricing

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	domain "github.com/sash-studio/api/internal/domain"
)

const (
	defaultLoadTimeout = 10 * time.Second
	meterName          = "github.com/sash-studio/api/internal/pricing"
)

// OverrideLoader fetches rule overrides from an external store.
type OverrideLoader interface {
	LoadOverrides(ctx context.Context) (domain.PricingOverrides, error)
}

// OverrideLoaderFunc adapts a function to OverrideLoader.
type OverrideLoaderFunc func(ctx context.Context) (domain.PricingOverrides, error)

// LoadOverrides calls f.
func (f OverrideLoaderFunc) LoadOverrides(ctx context.Context) (domain.PricingOverrides, error) {
	return f(ctx)
}

// CatalogDeps bundles the collaborators of a Catalog.
type CatalogDeps struct {
	Loader      OverrideLoader
	SourceName  string
	Defaults    *RuleSet
	LoadTimeout time.Duration
	Meter       metric.Meter
	Logger      func(context.Context, string, map[string]any)
}

// Catalog owns the process rule set. It serves the defaults until Initialize publishes the
// merged rule set, which happens at most once. Reads never block.
type Catalog struct {
	loader  OverrideLoader
	source  string
	timeout time.Duration
	logger  func(context.Context, string, map[string]any)

	rules      atomic.Pointer[RuleSet]
	overridden atomic.Bool

	once sync.Once
	done chan struct{}

	loads metric.Int64Counter
}

// NewCatalog constructs a catalog serving deps.Defaults, or DefaultRuleSet when none are given.
func NewCatalog(deps CatalogDeps) *Catalog {
	defaults := deps.Defaults.Clone()
	if defaults == nil {
		defaults = DefaultRuleSet()
	}
	timeout := deps.LoadTimeout
	if timeout <= 0 {
		timeout = defaultLoadTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	meter := deps.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(meterName)
	}
	source := deps.SourceName
	if source == "" {
		source = "none"
	}

	c := &Catalog{
		loader:  deps.Loader,
		source:  source,
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
	c.rules.Store(defaults)

	loads, err := meter.Int64Counter(
		"pricing.overrides.loaded",
		metric.WithDescription("Count of rule override load attempts by outcome"),
	)
	if err == nil {
		c.loads = loads
	}
	return c
}

// Rules returns the rule set currently in force.
func (c *Catalog) Rules() *RuleSet {
	return c.rules.Load()
}

// Overridden reports whether overrides from the external source have been merged.
func (c *Catalog) Overridden() bool {
	return c.overridden.Load()
}

// Source names the configured override source.
func (c *Catalog) Source() string {
	return c.source
}

// Calculate prices the configuration against the rule set currently in force.
func (c *Catalog) Calculate(cfg domain.WindowConfiguration) domain.PriceBreakdown {
	return Calculate(c.Rules(), cfg)
}

// Done is closed once initialisation has finished, whether or not overrides were applied.
func (c *Catalog) Done() <-chan struct{} {
	return c.done
}

// Start runs Initialize in the background and returns Done.
func (c *Catalog) Start(ctx context.Context) <-chan struct{} {
	go c.Initialize(ctx)
	return c.done
}

// Initialize loads overrides once and publishes the merged rule set. Load failures keep the
// defaults in force and are only logged. Later calls return immediately.
func (c *Catalog) Initialize(ctx context.Context) {
	c.once.Do(func() {
		defer close(c.done)

		if c.loader == nil {
			c.record(ctx, "skipped")
			c.logger(ctx, "pricing.overrides.skipped", map[string]any{"source": c.source})
			return
		}

		loadCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		overrides, err := c.loader.LoadOverrides(loadCtx)
		if err != nil {
			c.record(ctx, "failed")
			c.logger(ctx, "pricing.overrides.failed", map[string]any{
				"source": c.source,
				"error":  err.Error(),
			})
			return
		}

		merged := c.Rules().WithOverrides(overrides)
		c.rules.Store(merged)
		c.overridden.Store(!overrides.IsEmpty())
		c.record(ctx, "applied")
		c.logger(ctx, "pricing.overrides.applied", map[string]any{
			"source":      c.source,
			"barPrice":    merged.PricePerBar,
			"emptyRecord": overrides.IsEmpty(),
		})
	})
}

func (c *Catalog) record(ctx context.Context, outcome string) {
	if c.loads == nil {
		return
	}
	c.loads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", c.source),
		attribute.String("outcome", outcome),
	))
}
