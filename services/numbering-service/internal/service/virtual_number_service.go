package service

import (
	"context"
	"errors"
	"time"

	"github.com/grigta/numbering/pkg/apperror"
	"github.com/grigta/numbering/pkg/database"
	"github.com/grigta/numbering/pkg/logger"
	"github.com/grigta/numbering/pkg/messaging"
	"github.com/grigta/numbering/services/numbering-service/internal/models"
	"github.com/grigta/numbering/services/numbering-service/internal/validation"
)

const (
	msgNumberExists    = "Virtual number already exists"
	msgInvalidNumberID = "Invalid virtual number id"

	entityVirtualNumber = "virtual_number"
)

type VirtualNumberService struct {
	repo       VirtualNumberRepository
	pagination Pagination
	metrics    *MetricsCollector
	events     events
	logger     logger.Logger
}

func NewVirtualNumberService(
	repo VirtualNumberRepository,
	publisher messaging.Publisher,
	pagination Pagination,
	metrics *MetricsCollector,
	log logger.Logger,
) *VirtualNumberService {
	return &VirtualNumberService{
		repo:       repo,
		pagination: pagination,
		metrics:    metrics,
		events:     events{publisher: publisher, metrics: metrics, logger: log},
		logger:     log,
	}
}

// Create stores a new virtual number. The owner id must be well formed but
// the owner itself is not looked up.
func (s *VirtualNumberService) Create(ctx context.Context, input validation.CreateVirtualNumberInput) (number *models.VirtualNumber, err error) {
	defer s.observe("create", time.Now(), &err)

	input, err = validation.ValidateCreateVirtualNumber(input)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByNumber(ctx, input.Number)
	if err != nil {
		return nil, s.internal(ctx, "Failed to check virtual number", err)
	}
	if exists {
		return nil, apperror.Conflict(msgNumberExists)
	}

	ownerID, err := database.ParseID(input.OwnerID)
	if err != nil {
		return nil, apperror.BadRequest(msgInvalidUserID)
	}

	status := models.NumberStatusPending
	if input.Status != nil {
		status = *input.Status
	}

	features := make([]models.Feature, 0, len(input.Features))
	for _, f := range input.Features {
		features = append(features, models.Feature(f))
	}

	number = &models.VirtualNumber{
		Number:   input.Number,
		OwnerID:  ownerID,
		Status:   status,
		Features: features,
	}

	if err = s.repo.Create(ctx, number); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperror.Conflict(msgNumberExists)
		}
		return nil, s.internal(ctx, "Failed to create virtual number", err)
	}

	s.logger.WithContext(ctx).Info("Virtual number created",
		logger.String("virtual_number_id", number.ID.Hex()),
		logger.String("owner_id", ownerID.Hex()),
	)
	s.events.publish(ctx, EventVirtualNumberCreated, number)

	return number, nil
}

// GetByID returns nil without error when no virtual number matches.
func (s *VirtualNumberService) GetByID(ctx context.Context, id string) (number *models.VirtualNumber, err error) {
	defer s.observe("get", time.Now(), &err)

	oid, err := database.ParseID(id)
	if err != nil {
		return nil, apperror.BadRequest(msgInvalidNumberID)
	}

	number, err = s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, s.internal(ctx, "Failed to get virtual number", err)
	}

	return number, nil
}

// Delete returns the number of removed records; a missing id yields zero.
func (s *VirtualNumberService) Delete(ctx context.Context, id string) (deleted int64, err error) {
	defer s.observe("delete", time.Now(), &err)

	oid, err := database.ParseID(id)
	if err != nil {
		return 0, apperror.BadRequest(msgInvalidNumberID)
	}

	deleted, err = s.repo.Delete(ctx, oid)
	if err != nil {
		return 0, s.internal(ctx, "Failed to delete virtual number", err)
	}

	s.logger.WithContext(ctx).Info("Virtual number delete",
		logger.String("virtual_number_id", oid.Hex()),
		logger.Int64("deleted_count", deleted),
	)

	if deleted > 0 {
		s.events.publish(ctx, EventVirtualNumberDeleted, map[string]string{"id": oid.Hex()})
	}

	return deleted, nil
}

func (s *VirtualNumberService) List(ctx context.Context, q models.PageQuery) (page *models.Page[models.VirtualNumber], err error) {
	defer s.observe("list", time.Now(), &err)

	q = s.pagination.Normalize(q)

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, s.internal(ctx, "Failed to list virtual numbers", err)
	}
	if items == nil {
		items = []models.VirtualNumber{}
	}

	return &models.Page[models.VirtualNumber]{
		Items: items,
		Stats: models.NewPageStats(q, total),
	}, nil
}

// ListByOwner pages through an account's numbers with the owner embedded
// in every item. An owner id without records yields an empty page.
func (s *VirtualNumberService) ListByOwner(ctx context.Context, ownerID string, q models.PageQuery) (page *models.Page[models.VirtualNumberWithOwner], err error) {
	defer s.observe("list_by_owner", time.Now(), &err)

	oid, err := database.ParseID(ownerID)
	if err != nil {
		return nil, apperror.BadRequest(msgInvalidUserID)
	}

	q = s.pagination.Normalize(q)

	items, total, err := s.repo.ListByOwner(ctx, oid, q)
	if err != nil {
		return nil, s.internal(ctx, "Failed to list virtual numbers", err)
	}
	if items == nil {
		items = []models.VirtualNumberWithOwner{}
	}

	return &models.Page[models.VirtualNumberWithOwner]{
		Items: items,
		Stats: models.NewPageStats(q, total),
	}, nil
}

func (s *VirtualNumberService) internal(ctx context.Context, msg string, err error) error {
	s.logger.WithContext(ctx).Error(msg, logger.Err(err))
	return apperror.Internal(msg, err)
}

func (s *VirtualNumberService) observe(operation string, started time.Time, err *error) {
	s.metrics.Observe(entityVirtualNumber, operation, started, *err)
}
