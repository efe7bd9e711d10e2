// Package service holds the account and virtual number use cases: input
// validation, uniqueness checks, store calls and the mapping of store
// outcomes onto apperror kinds.
package service

import (
	"context"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/grigta/numbering/pkg/logger"
	"github.com/grigta/numbering/pkg/messaging"
	"github.com/grigta/numbering/services/numbering-service/internal/models"
)

const (
	EventAccountCreated       = "account.created"
	EventAccountUpdated       = "account.updated"
	EventAccountDeleted       = "account.deleted"
	EventVirtualNumberCreated = "virtual_number.created"
	EventVirtualNumberDeleted = "virtual_number.deleted"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, update models.AccountUpdate) (*models.Account, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	List(ctx context.Context, q models.PageQuery) ([]models.Account, int64, error)
}

type VirtualNumberRepository interface {
	Create(ctx context.Context, number *models.VirtualNumber) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.VirtualNumber, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	List(ctx context.Context, q models.PageQuery) ([]models.VirtualNumber, int64, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, q models.PageQuery) ([]models.VirtualNumberWithOwner, int64, error)
}

type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

func DefaultPagination() Pagination {
	return Pagination{DefaultLimit: 10, MaxLimit: 100}
}

// Normalize clamps page to at least 1 and replaces a non-positive limit with
// the default. A positive MaxLimit caps the limit. Page is capped so that the
// skip offset fits in an int64.
func (p Pagination) Normalize(q models.PageQuery) models.PageQuery {
	defaultLimit := p.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 10
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if p.MaxLimit > 0 && q.Limit > p.MaxLimit {
		q.Limit = p.MaxLimit
	}
	if maxPage := math.MaxInt64 / int64(q.Limit); int64(q.Page) > maxPage {
		q.Page = int(maxPage)
	}
	return q
}

type events struct {
	publisher messaging.Publisher
	metrics   *MetricsCollector
	logger    logger.Logger
}

// publish never fails the caller; delivery errors are logged and counted.
func (e events) publish(ctx context.Context, eventType string, data interface{}) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishEvent(ctx, eventType, data); err != nil {
		e.metrics.IncrementEventFailed(eventType)
		e.logger.WithContext(ctx).Warn("Failed to publish event",
			logger.String("event", eventType),
			logger.Err(err),
		)
	}
}
