package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sash-studio/api/internal/platform/httpx"
	"github.com/sash-studio/api/internal/services"
)

// QuoteHandlers exposes anonymous pricing under /public.
type QuoteHandlers struct {
	quotes services.QuoteService
}

// NewQuoteHandlers constructs QuoteHandlers.
func NewQuoteHandlers(quotes services.QuoteService) *QuoteHandlers {
	return &QuoteHandlers{quotes: quotes}
}

// Routes registers the /public endpoints.
func (h *QuoteHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/quotes", h.createQuote)
	r.Get("/pricing-rules", h.getRules)
}

func (h *QuoteHandlers) createQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.quotes == nil {
		httpx.WriteError(ctx, w, httpx.NewError("quote_service_unavailable", "quote service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req configurationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.WriteError(ctx, w, httpx.DecodeError(err))
		return
	}

	quote := h.quotes.Quote(ctx, req.toDomain())
	httpx.WriteJSON(r.Context(), w, http.StatusOK, buildQuotePayload(quote))
}

func (h *QuoteHandlers) getRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.quotes == nil {
		httpx.WriteError(ctx, w, httpx.NewError("quote_service_unavailable", "quote service unavailable", http.StatusServiceUnavailable))
		return
	}

	snapshot := h.quotes.Rules(ctx)
	httpx.WriteJSON(r.Context(), w, http.StatusOK, rulesResponse{
		Rules:      buildRulesPayload(snapshot.Rules),
		Overridden: snapshot.Overridden,
		Source:     snapshot.Source,
	})
}
