package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	"github.com/sash-studio/api/internal/repositories"
)

const (
	quoteRequestIDPrefix  = "qr_"
	maxEmailLength        = 254
	maxQuoteMessageLength = 2000

	quoteRequestLoggerEventSubmitted     = "quote_request.submitted"
	quoteRequestLoggerEventPublishFailed = "quote_request.publish.failed"
)

var (
	// ErrQuoteRequestInvalidInput indicates a malformed email or message.
	ErrQuoteRequestInvalidInput = errors.New("quote request: invalid input")
	// ErrQuoteRequestUnavailable indicates the request could not be stored.
	ErrQuoteRequestUnavailable = errors.New("quote request: unavailable")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// QuoteRequestServiceDeps bundles collaborators required to construct a quote request service.
type QuoteRequestServiceDeps struct {
	Repository  repositories.QuoteRequestRepository
	Catalog     PricingCatalog
	Events      EventPublisher
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type quoteRequestService struct {
	repo      repositories.QuoteRequestRepository
	catalog   PricingCatalog
	events    EventPublisher
	clock     func() time.Time
	newID     func() string
	logger    eventLogger
	sanitizer *bluemonday.Policy
}

var _ QuoteRequestService = (*quoteRequestService)(nil)

// NewQuoteRequestService assembles the quote request service. Events are optional.
func NewQuoteRequestService(deps QuoteRequestServiceDeps) (QuoteRequestService, error) {
	if deps.Repository == nil {
		return nil, errors.New("quote request service: repository is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("quote request service: catalog is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return quoteRequestIDPrefix + ulid.Make().String()
		}
	}
	logger := deps.Logger
	if logger == nil {
		logger = nopLogger
	}

	return &quoteRequestService{
		repo:    deps.Repository,
		catalog: deps.Catalog,
		events:  deps.Events,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:     idGen,
		logger:    logger,
		sanitizer: bluemonday.StrictPolicy(),
	}, nil
}

func (s *quoteRequestService) SubmitQuoteRequest(ctx context.Context, cmd QuoteRequestCommand) (QuoteRequest, error) {
	email := strings.TrimSpace(cmd.Email)
	if email == "" {
		return QuoteRequest{}, fmt.Errorf("%w: email is required", ErrQuoteRequestInvalidInput)
	}
	if len(email) > maxEmailLength || !emailPattern.MatchString(email) {
		return QuoteRequest{}, fmt.Errorf("%w: email is invalid", ErrQuoteRequestInvalidInput)
	}

	// Stored as plain text: markup stripped, entities decoded.
	message := strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(cmd.Message)))
	if utf8.RuneCountInString(message) > maxQuoteMessageLength {
		return QuoteRequest{}, fmt.Errorf("%w: message must be at most %d characters", ErrQuoteRequestInvalidInput, maxQuoteMessageLength)
	}

	cfg := normalizeConfiguration(cmd.Configuration)
	request := QuoteRequest{
		ID:            s.newID(),
		Email:         email,
		Message:       message,
		Configuration: cfg,
		Pricing:       s.catalog.Calculate(cfg),
		CreatedAt:     s.clock(),
	}

	if err := s.repo.Insert(ctx, request); err != nil {
		return QuoteRequest{}, fmt.Errorf("%w: %v", ErrQuoteRequestUnavailable, err)
	}

	s.logger(ctx, quoteRequestLoggerEventSubmitted, map[string]any{
		"quoteRequestId": request.ID,
		"totalWithVat":   request.Pricing.TotalWithVAT,
	})
	s.publish(ctx, request)
	return request, nil
}

func (s *quoteRequestService) publish(ctx context.Context, request QuoteRequest) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, Event{
		Type:       EventQuoteRequestSubmitted,
		ID:         request.ID,
		OccurredAt: request.CreatedAt,
		Payload: map[string]any{
			"quoteRequestId": request.ID,
			"email":          request.Email,
			"quantity":       request.Pricing.Quantity,
			"totalWithVat":   request.Pricing.TotalWithVAT,
		},
	})
	if err != nil {
		s.logger(ctx, quoteRequestLoggerEventPublishFailed, map[string]any{
			"quoteRequestId": request.ID,
			"error":          err.Error(),
		})
	}
}
