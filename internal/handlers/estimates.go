package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sash-studio/api/internal/platform/auth"
	"github.com/sash-studio/api/internal/platform/httpx"
	"github.com/sash-studio/api/internal/services"
)

// EstimateHandlers exposes the signed-in customer's saved estimates under /me.
type EstimateHandlers struct {
	authn     *auth.Authenticator
	estimates services.EstimateService
}

// NewEstimateHandlers constructs EstimateHandlers.
func NewEstimateHandlers(authn *auth.Authenticator, estimates services.EstimateService) *EstimateHandlers {
	return &EstimateHandlers{
		authn:     authn,
		estimates: estimates,
	}
}

// Routes registers the /me/estimates endpoints.
func (h *EstimateHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Route("/estimates", func(rt chi.Router) {
		rt.Post("/", h.saveEstimate)
		rt.Get("/", h.listEstimates)
		rt.Get("/{estimateId}", h.getEstimate)
	})
}

type saveEstimateRequest struct {
	Configuration *configurationRequest `json:"configuration"`
	// Pricing is accepted for client convenience and discarded.
	Pricing json.RawMessage `json:"pricing,omitempty"`
}

type estimateListResponse struct {
	Items []estimatePayload `json:"items"`
}

func (h *EstimateHandlers) saveEstimate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}

	var req saveEstimateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.DecodeError(err))
		return
	}
	if req.Configuration == nil {
		httpx.WriteError(ctx, w, httpx.BadRequest("invalid_request", "configuration is required"))
		return
	}

	estimate, err := h.estimates.SaveEstimate(ctx, services.SaveEstimateCommand{
		UserID:        userID,
		Configuration: req.Configuration.toDomain(),
	})
	if err != nil {
		writeEstimateError(ctx, w, err)
		return
	}
	httpx.WriteJSON(r.Context(), w, http.StatusCreated, buildEstimatePayload(estimate))
}

func (h *EstimateHandlers) listEstimates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpx.WriteError(ctx, w, httpx.BadRequest("invalid_limit", "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	estimates, err := h.estimates.ListEstimates(ctx, services.EstimateListFilter{UserID: userID, Limit: limit})
	if err != nil {
		writeEstimateError(ctx, w, err)
		return
	}

	resp := estimateListResponse{Items: make([]estimatePayload, 0, len(estimates))}
	for _, estimate := range estimates {
		resp.Items = append(resp.Items, buildEstimatePayload(estimate))
	}
	httpx.WriteJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *EstimateHandlers) getEstimate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}

	estimate, err := h.estimates.GetEstimate(ctx, userID, chi.URLParam(r, "estimateId"))
	if err != nil {
		writeEstimateError(ctx, w, err)
		return
	}
	httpx.WriteJSON(r.Context(), w, http.StatusOK, buildEstimatePayload(estimate))
}

func (h *EstimateHandlers) requireUser(ctx context.Context, w http.ResponseWriter) (string, bool) {
	if h.estimates == nil {
		httpx.WriteError(ctx, w, httpx.NewError("estimate_service_unavailable", "estimate service unavailable", http.StatusServiceUnavailable))
		return "", false
	}
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return "", false
	}
	return strings.TrimSpace(identity.UID), true
}

func writeEstimateError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrEstimateInvalidInput):
		httpx.WriteError(ctx, w, httpx.BadRequest("invalid_request", err.Error()))
	case errors.Is(err, services.ErrEstimateNotFound):
		httpx.WriteError(ctx, w, httpx.NotFound("estimate_not_found", "estimate not found"))
	case errors.Is(err, services.ErrEstimateUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("estimate_unavailable", "estimates are temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.Internal())
	}
}
