package handlers

import (
	"net/http"
	"testing"

	"github.com/sash-studio/api/internal/pricing"
	"github.com/sash-studio/api/internal/services"
)

func newQuoteRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, err := services.NewQuoteService(services.QuoteServiceDeps{Catalog: pricing.NewCatalog(pricing.CatalogDeps{})})
	if err != nil {
		t.Fatalf("NewQuoteService: %v", err)
	}
	return NewRouter(WithPublicRoutes(NewQuoteHandlers(svc).Routes))
}

func TestCreateQuoteAppliesDefaults(t *testing.T) {
	router := newQuoteRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/api/v1/public/quotes", `{"quantity": 6}`, "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody[quotePayload](t, rr)
	if body.Configuration.Width != 900 || body.Configuration.Height != 1200 || body.Configuration.Style != "1over1" {
		t.Fatalf("expected defaults, got %+v", body.Configuration)
	}
	if body.Breakdown.Discount != 0.05 || body.Breakdown.TotalWithVAT != 6316.06 {
		t.Fatalf("unexpected breakdown %+v", body.Breakdown)
	}
	if body.Display.TotalWithVAT != "£6,316" || body.Display.ColorName != "Pure White" {
		t.Fatalf("unexpected display %+v", body.Display)
	}
}

func TestCreateQuoteWithoutBodyPricesDefaultWindow(t *testing.T) {
	router := newQuoteRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/api/v1/public/quotes", "", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeBody[quotePayload](t, rr)
	if body.Breakdown.TotalWithVAT != 1108.08 || body.Display.TotalWithVAT != "£1,108" {
		t.Fatalf("unexpected quote %+v", body)
	}
}

func TestCreateQuoteCapsOversizedDimensions(t *testing.T) {
	router := newQuoteRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/api/v1/public/quotes", `{"width": 1e200, "height": 1e200}`, "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody[quotePayload](t, rr)
	if body.Configuration.Width != 5000 || body.Configuration.Height != 5000 {
		t.Fatalf("expected dimensions capped at 5000, got %+v", body.Configuration)
	}
	if body.Breakdown.SquareMeters != 25 || body.Breakdown.TotalWithVAT <= 0 {
		t.Fatalf("expected a finite priced breakdown, got %+v", body.Breakdown)
	}
}

func TestCreateQuoteClampsQuantity(t *testing.T) {
	router := newQuoteRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/api/v1/public/quotes", `{"quantity": 0, "style": "6over6"}`, "")

	body := decodeBody[quotePayload](t, rr)
	if body.Configuration.Quantity != 1 || body.Breakdown.BarsPrice != 150 {
		t.Fatalf("unexpected quote %+v", body)
	}
}

func TestCreateQuoteRejectsMalformedJSON(t *testing.T) {
	router := newQuoteRouter(t)

	cases := map[string]string{
		"syntax":        `{"quantity":`,
		"unknown field": `{"colour": "oak"}`,
		"wrong type":    `{"width": "wide"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			rr := doRequest(t, router, http.MethodPost, "/api/v1/public/quotes", payload, "")
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			if body := decodeBody[errorBody](t, rr); body.Error != "invalid_json" {
				t.Fatalf("expected invalid_json, got %+v", body)
			}
		})
	}
}

func TestGetPricingRules(t *testing.T) {
	router := newQuoteRouter(t)

	rr := doRequest(t, router, http.MethodGet, "/api/v1/public/pricing-rules", "", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeBody[rulesResponse](t, rr)
	if body.Overridden || body.Source != "none" {
		t.Fatalf("unexpected source info %+v", body)
	}
	if body.Rules.PricePerBar != 15 || body.Rules.OpeningAdjustments["fixed"] != -50 || body.Rules.VATRate != 0.2 {
		t.Fatalf("unexpected rules %+v", body.Rules)
	}
	if len(body.Rules.SizeTiers) != 6 || body.Rules.SizeTiers[0].MaxSquareMeters != 0.6 {
		t.Fatalf("unexpected size tiers %+v", body.Rules.SizeTiers)
	}
	if _, ok := body.Rules.BarsPerStyle["custom"]; ok {
		t.Fatalf("custom style must not carry a bar count")
	}
}
