package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sash-studio/api/internal/platform/httpx"
	"github.com/sash-studio/api/internal/services"
)

// QuoteRequestHandlers accepts anonymous quote requests under /quote-requests.
type QuoteRequestHandlers struct {
	requests services.QuoteRequestService
	limiter  *clientLimiter
}

// QuoteRequestOption customises QuoteRequestHandlers.
type QuoteRequestOption func(*QuoteRequestHandlers)

// WithQuoteRequestRateLimit allows perMinute submissions per client IP. Zero disables limiting.
func WithQuoteRequestRateLimit(perMinute int, clock func() time.Time) QuoteRequestOption {
	return func(h *QuoteRequestHandlers) {
		h.limiter = newClientLimiter(perMinute, time.Minute, clock)
	}
}

// NewQuoteRequestHandlers constructs QuoteRequestHandlers.
func NewQuoteRequestHandlers(requests services.QuoteRequestService, opts ...QuoteRequestOption) *QuoteRequestHandlers {
	h := &QuoteRequestHandlers{requests: requests}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers the /quote-requests endpoints.
func (h *QuoteRequestHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.With(limitByClientIP(h.limiter)).Post("/", h.submit)
}

type quoteRequestRequest struct {
	Email         string                `json:"email"`
	Message       string                `json:"message"`
	Configuration *configurationRequest `json:"configuration"`
}

type quoteRequestResponse struct {
	ID        string           `json:"id"`
	Pricing   breakdownPayload `json:"pricing"`
	CreatedAt string           `json:"createdAt"`
}

func (h *QuoteRequestHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.requests == nil {
		httpx.WriteError(ctx, w, httpx.NewError("quote_request_service_unavailable", "quote request service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req quoteRequestRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.DecodeError(err))
		return
	}

	request, err := h.requests.SubmitQuoteRequest(ctx, services.QuoteRequestCommand{
		Email:         req.Email,
		Message:       req.Message,
		Configuration: req.Configuration.toDomain(),
	})
	if err != nil {
		writeQuoteRequestError(ctx, w, err)
		return
	}

	httpx.WriteJSON(r.Context(), w, http.StatusCreated, quoteRequestResponse{
		ID:        request.ID,
		Pricing:   buildBreakdownPayload(request.Pricing),
		CreatedAt: formatTime(request.CreatedAt),
	})
}

func writeQuoteRequestError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrQuoteRequestInvalidInput):
		httpx.WriteError(ctx, w, httpx.BadRequest("invalid_request", err.Error()))
	case errors.Is(err, services.ErrQuoteRequestUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("quote_request_unavailable", "quote requests are temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.Internal())
	}
}
