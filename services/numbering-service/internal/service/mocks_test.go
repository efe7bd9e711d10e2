package service

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/grigta/numbering/pkg/logger"
	"github.com/grigta/numbering/services/numbering-service/internal/models"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, id primitive.ObjectID, update models.AccountUpdate) (*models.Account, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context, q models.PageQuery) ([]models.Account, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Account), args.Get(1).(int64), args.Error(2)
}

type MockVirtualNumberRepository struct {
	mock.Mock
}

func (m *MockVirtualNumberRepository) Create(ctx context.Context, number *models.VirtualNumber) error {
	args := m.Called(ctx, number)
	return args.Error(0)
}

func (m *MockVirtualNumberRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.VirtualNumber, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VirtualNumber), args.Error(1)
}

func (m *MockVirtualNumberRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockVirtualNumberRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVirtualNumberRepository) List(ctx context.Context, q models.PageQuery) ([]models.VirtualNumber, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.VirtualNumber), args.Get(1).(int64), args.Error(2)
}

func (m *MockVirtualNumberRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, q models.PageQuery) ([]models.VirtualNumberWithOwner, int64, error) {
	args := m.Called(ctx, ownerID, q)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.VirtualNumberWithOwner), args.Get(1).(int64), args.Error(2)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(ctx context.Context, eventType string, data interface{}) error {
	args := m.Called(ctx, eventType, data)
	return args.Error(0)
}

func testLogger() logger.Logger {
	return logger.New(logger.Options{Level: "debug", Output: io.Discard})
}

func testMetrics() *MetricsCollector {
	return NewMetricsCollector(prometheus.NewRegistry())
}
