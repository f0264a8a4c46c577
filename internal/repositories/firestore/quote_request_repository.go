package firestore

import (
	"context"
	"errors"

	domain "github.com/sash-studio/api/internal/domain"
	pfirestore "github.com/sash-studio/api/internal/platform/firestore"
	"github.com/sash-studio/api/internal/repositories"
)

const quoteRequestsCollection = "quote_requests"

// QuoteRequestRepository stores anonymous quote requests.
type QuoteRequestRepository struct {
	base *pfirestore.BaseRepository[quoteRequestDocument]
}

var _ repositories.QuoteRequestRepository = (*QuoteRequestRepository)(nil)

// NewQuoteRequestRepository binds the repository to provider.
func NewQuoteRequestRepository(provider *pfirestore.Provider) (*QuoteRequestRepository, error) {
	if provider == nil {
		return nil, errors.New("quote request repository requires firestore provider")
	}
	return &QuoteRequestRepository{
		base: pfirestore.NewBaseRepository[quoteRequestDocument](provider, quoteRequestsCollection),
	}, nil
}

// Insert creates the quote request.
func (r *QuoteRequestRepository) Insert(ctx context.Context, request domain.QuoteRequest) error {
	return r.base.Create(ctx, request.ID, encodeQuoteRequest(request))
}
