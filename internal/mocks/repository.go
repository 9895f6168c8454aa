package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/lease-engine/internal/domain"
	"github.com/segyhp/lease-engine/internal/repository"
)

// MockStore hands out the mock repositories. WithTx runs fn against the
// same store, so expectations set on the repositories apply inside it.
type MockStore struct {
	mock.Mock
	LeaseRepo    *MockLeaseRepository
	PaymentRepo  *MockPaymentRepository
	UnitRepo     *MockUnitRepository
	DocumentRepo *MockDocumentRepository
}

func NewMockStore() *MockStore {
	return &MockStore{
		LeaseRepo:    &MockLeaseRepository{},
		PaymentRepo:  &MockPaymentRepository{},
		UnitRepo:     &MockUnitRepository{},
		DocumentRepo: &MockDocumentRepository{},
	}
}

func (m *MockStore) Leases() repository.LeaseRepository       { return m.LeaseRepo }
func (m *MockStore) Payments() repository.PaymentRepository   { return m.PaymentRepo }
func (m *MockStore) Units() repository.UnitRepository         { return m.UnitRepo }
func (m *MockStore) Documents() repository.DocumentRepository { return m.DocumentRepo }

func (m *MockStore) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(m)
}

// AssertExpectations checks every repository
func (m *MockStore) AssertExpectations(t mock.TestingT) bool {
	return m.LeaseRepo.AssertExpectations(t) &&
		m.PaymentRepo.AssertExpectations(t) &&
		m.UnitRepo.AssertExpectations(t) &&
		m.DocumentRepo.AssertExpectations(t)
}

type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) Create(ctx context.Context, lease *domain.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockLeaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lease), args.Error(1)
}

func (m *MockLeaseRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lease), args.Error(1)
}

func (m *MockLeaseRepository) Update(ctx context.Context, lease *domain.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockLeaseRepository) List(ctx context.Context, filter repository.LeaseFilter) ([]*domain.Lease, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Lease), args.Error(1)
}

func (m *MockLeaseRepository) ExpireEnded(ctx context.Context, asOf time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockLeaseRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) CreateIfNotExists(ctx context.Context, payment *domain.Payment) (bool, error) {
	args := m.Called(ctx, payment)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, leaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListOverdueCandidates(ctx context.Context, asOf time.Time, limit int) ([]*domain.Payment, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Unit), args.Error(1)
}

func (m *MockUnitRepository) UpdateStatus(ctx context.Context, unit *domain.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByOwner(ctx context.Context, owner domain.Documentable) ([]*domain.Document, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockDocumentRepository) OwnerExists(ctx context.Context, owner domain.Documentable) (bool, error) {
	args := m.Called(ctx, owner)
	return args.Bool(0), args.Error(1)
}
