package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/sash-studio/api/internal/domain"
	"github.com/sash-studio/api/internal/repositories"
)

const (
	estimateIDPrefix         = "est_"
	defaultEstimateListLimit = 20
	maxEstimateListLimit     = 100

	estimateLoggerEventSaved         = "estimate.saved"
	estimateLoggerEventPublishFailed = "estimate.publish.failed"
)

var (
	// ErrEstimateInvalidInput indicates a missing owner or identifier.
	ErrEstimateInvalidInput = errors.New("estimate: invalid input")
	// ErrEstimateNotFound hides both missing estimates and estimates owned by someone else.
	ErrEstimateNotFound = errors.New("estimate: not found")
	// ErrEstimateUnavailable indicates the store could not be reached.
	ErrEstimateUnavailable = errors.New("estimate: unavailable")
	// ErrEstimateRepositoryFailure wraps any other store failure.
	ErrEstimateRepositoryFailure = errors.New("estimate: repository failure")
)

// EstimateServiceDeps bundles collaborators required to construct an estimate service.
type EstimateServiceDeps struct {
	Repository  repositories.EstimateRepository
	Catalog     PricingCatalog
	Events      EventPublisher
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type estimateService struct {
	repo    repositories.EstimateRepository
	catalog PricingCatalog
	events  EventPublisher
	clock   func() time.Time
	newID   func() string
	logger  eventLogger
}

var _ EstimateService = (*estimateService)(nil)

// NewEstimateService assembles the estimate service. Events are optional.
func NewEstimateService(deps EstimateServiceDeps) (EstimateService, error) {
	if deps.Repository == nil {
		return nil, errors.New("estimate service: repository is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("estimate service: catalog is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return estimateIDPrefix + ulid.Make().String()
		}
	}
	logger := deps.Logger
	if logger == nil {
		logger = nopLogger
	}

	return &estimateService{
		repo:    deps.Repository,
		catalog: deps.Catalog,
		events:  deps.Events,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:  idGen,
		logger: logger,
	}, nil
}

func (s *estimateService) SaveEstimate(ctx context.Context, cmd SaveEstimateCommand) (Estimate, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return Estimate{}, fmt.Errorf("%w: user id is required", ErrEstimateInvalidInput)
	}

	cfg := normalizeConfiguration(cmd.Configuration)
	estimate := Estimate{
		ID:            s.newID(),
		UserID:        userID,
		Configuration: cfg,
		Pricing:       s.catalog.Calculate(cfg),
		Status:        domain.EstimateStatusDraft,
		CreatedAt:     s.clock(),
	}

	if err := s.repo.Insert(ctx, estimate); err != nil {
		return Estimate{}, s.mapRepositoryError(err)
	}

	s.logger(ctx, estimateLoggerEventSaved, map[string]any{
		"estimateId":   estimate.ID,
		"userId":       userID,
		"totalWithVat": estimate.Pricing.TotalWithVAT,
	})
	s.publish(ctx, estimate)
	return estimate, nil
}

func (s *estimateService) ListEstimates(ctx context.Context, filter EstimateListFilter) ([]Estimate, error) {
	userID := strings.TrimSpace(filter.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrEstimateInvalidInput)
	}
	limit := filter.Limit
	switch {
	case limit <= 0:
		limit = defaultEstimateListLimit
	case limit > maxEstimateListLimit:
		limit = maxEstimateListLimit
	}

	estimates, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	if estimates == nil {
		estimates = []Estimate{}
	}
	return estimates, nil
}

func (s *estimateService) GetEstimate(ctx context.Context, userID, estimateID string) (Estimate, error) {
	userID = strings.TrimSpace(userID)
	estimateID = strings.TrimSpace(estimateID)
	if userID == "" || estimateID == "" {
		return Estimate{}, fmt.Errorf("%w: user id and estimate id are required", ErrEstimateInvalidInput)
	}

	estimate, err := s.repo.FindByID(ctx, estimateID)
	if err != nil {
		return Estimate{}, s.mapRepositoryError(err)
	}
	if estimate.UserID != userID {
		return Estimate{}, ErrEstimateNotFound
	}
	return estimate, nil
}

func (s *estimateService) publish(ctx context.Context, estimate Estimate) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, Event{
		Type:       EventEstimateSaved,
		ID:         estimate.ID,
		OccurredAt: estimate.CreatedAt,
		Payload: map[string]any{
			"estimateId":   estimate.ID,
			"userId":       estimate.UserID,
			"quantity":     estimate.Pricing.Quantity,
			"totalWithVat": estimate.Pricing.TotalWithVAT,
		},
	})
	if err != nil {
		s.logger(ctx, estimateLoggerEventPublishFailed, map[string]any{
			"estimateId": estimate.ID,
			"error":      err.Error(),
		})
	}
}

func (s *estimateService) mapRepositoryError(err error) error {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrEstimateNotFound
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrEstimateUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrEstimateRepositoryFailure, err)
}
