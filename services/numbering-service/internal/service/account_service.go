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
	msgUserExists    = "User already exists"
	msgInvalidUserID = "Invalid user ID"
	msgUserNotFound  = "User not found"

	entityAccount = "account"
)

type AccountService struct {
	repo       AccountRepository
	pagination Pagination
	metrics    *MetricsCollector
	events     events
	logger     logger.Logger
}

func NewAccountService(
	repo AccountRepository,
	publisher messaging.Publisher,
	pagination Pagination,
	metrics *MetricsCollector,
	log logger.Logger,
) *AccountService {
	return &AccountService{
		repo:       repo,
		pagination: pagination,
		metrics:    metrics,
		events:     events{publisher: publisher, metrics: metrics, logger: log},
		logger:     log,
	}
}

func (s *AccountService) Create(ctx context.Context, input validation.CreateAccountInput) (account *models.Account, err error) {
	defer s.observe("create", time.Now(), &err)

	input, err = validation.ValidateCreateAccount(input)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, s.internal(ctx, "Failed to check user", err)
	}
	if exists {
		return nil, apperror.Conflict(msgUserExists)
	}

	status := models.AccountStatusActive
	if input.AccountStatus != nil {
		status = *input.AccountStatus
	}

	account = &models.Account{
		Name:          input.Name,
		Email:         input.Email,
		AccountStatus: status,
	}

	if err = s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperror.Conflict(msgUserExists)
		}
		return nil, s.internal(ctx, "Failed to create user", err)
	}

	s.logger.WithContext(ctx).Info("User created", logger.String("user_id", account.ID.Hex()))
	s.events.publish(ctx, EventAccountCreated, account)

	return account, nil
}

func (s *AccountService) GetByID(ctx context.Context, id string) (account *models.Account, err error) {
	defer s.observe("get", time.Now(), &err)

	oid, err := database.ParseID(id)
	if err != nil {
		return nil, apperror.BadRequest(msgInvalidUserID)
	}

	account, err = s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, s.internal(ctx, "Failed to get user", err)
	}
	if account == nil {
		return nil, apperror.NotFound(msgUserNotFound)
	}

	return account, nil
}

func (s *AccountService) Update(ctx context.Context, id string, input validation.UpdateAccountInput) (account *models.Account, err error) {
	defer s.observe("update", time.Now(), &err)

	oid, err := database.ParseID(id)
	if err != nil {
		return nil, apperror.BadRequest(msgInvalidUserID)
	}

	input, err = validation.ValidateUpdateAccount(input)
	if err != nil {
		return nil, err
	}

	account, err = s.repo.Update(ctx, oid, input.Update())
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperror.Conflict(msgUserExists)
		}
		return nil, s.internal(ctx, "Failed to update user", err)
	}
	if account == nil {
		return nil, apperror.NotFound(msgUserNotFound)
	}

	s.events.publish(ctx, EventAccountUpdated, account)

	return account, nil
}

// Delete removes the account and returns its id.
func (s *AccountService) Delete(ctx context.Context, id string) (deletedID string, err error) {
	defer s.observe("delete", time.Now(), &err)

	oid, err := database.ParseID(id)
	if err != nil {
		return "", apperror.BadRequest(msgInvalidUserID)
	}

	account, err := s.repo.Delete(ctx, oid)
	if err != nil {
		return "", s.internal(ctx, "Failed to delete user", err)
	}
	if account == nil {
		return "", apperror.NotFound(msgUserNotFound)
	}

	deletedID = account.ID.Hex()
	s.logger.WithContext(ctx).Info("User deleted", logger.String("user_id", deletedID))
	s.events.publish(ctx, EventAccountDeleted, map[string]string{"id": deletedID})

	return deletedID, nil
}

func (s *AccountService) List(ctx context.Context, q models.PageQuery) (page *models.Page[models.Account], err error) {
	defer s.observe("list", time.Now(), &err)

	q = s.pagination.Normalize(q)

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, s.internal(ctx, "Failed to list users", err)
	}
	if items == nil {
		items = []models.Account{}
	}

	return &models.Page[models.Account]{
		Items: items,
		Stats: models.NewPageStats(q, total),
	}, nil
}

func (s *AccountService) internal(ctx context.Context, msg string, err error) error {
	s.logger.WithContext(ctx).Error(msg, logger.Err(err))
	return apperror.Internal(msg, err)
}

func (s *AccountService) observe(operation string, started time.Time, err *error) {
	s.metrics.Observe(entityAccount, operation, started, *err)
}
