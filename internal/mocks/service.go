package mocks

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/lease-engine/internal/domain"
	"github.com/segyhp/lease-engine/internal/repository"
)

type MockLeaseService struct {
	mock.Mock
}

func (m *MockLeaseService) CreateLease(ctx context.Context, request *domain.CreateLeaseRequest) (*domain.Lease, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lease), args.Error(1)
}

func (m *MockLeaseService) GetLease(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lease), args.Error(1)
}

func (m *MockLeaseService) ListLeases(ctx context.Context, filter repository.LeaseFilter) ([]*domain.Lease, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Lease), args.Error(1)
}

func (m *MockLeaseService) ActivateLease(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lease), args.Error(1)
}

func (m *MockLeaseService) TerminateLease(ctx context.Context, id uuid.UUID, reason string, date *time.Time) (*domain.TerminateLeaseResponse, error) {
	args := m.Called(ctx, id, reason, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TerminateLeaseResponse), args.Error(1)
}

func (m *MockLeaseService) RenewLease(ctx context.Context, id uuid.UUID, newEndDate time.Time, newRent *decimal.Decimal) (*domain.RenewLeaseResponse, error) {
	args := m.Called(ctx, id, newEndDate, newRent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenewLeaseResponse), args.Error(1)
}

func (m *MockLeaseService) GenerateSchedule(ctx context.Context, id uuid.UUID) (*domain.ScheduleResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleResponse), args.Error(1)
}

func (m *MockLeaseService) ListPayments(ctx context.Context, id uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockLeaseService) GetSummary(ctx context.Context, id uuid.UUID) (*domain.LeaseSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LeaseSummary), args.Error(1)
}

func (m *MockLeaseService) DeleteLease(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) RecordPayment(ctx context.Context, id uuid.UUID, rec domain.PaymentRecord) (*domain.Payment, error) {
	args := m.Called(ctx, id, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) MarkAsOverdue(ctx context.Context, id uuid.UUID) (*domain.OverdueResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OverdueResponse), args.Error(1)
}

func (m *MockPaymentService) BulkMarkOverdue(ctx context.Context, ids []uuid.UUID) (*domain.BulkOverdueResponse, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkOverdueResponse), args.Error(1)
}

func (m *MockPaymentService) CancelPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

type MockDocumentService struct {
	mock.Mock
}

// UploadDocument drains content so expectations can match on the uploaded bytes
func (m *MockDocumentService) UploadDocument(ctx context.Context, request *domain.UploadDocumentRequest, content io.Reader) (*domain.Document, error) {
	body, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	args := m.Called(ctx, request, string(body))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, kind string, ownerID uuid.UUID) ([]*domain.Document, error) {
	args := m.Called(ctx, kind, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentService) OpenDocument(ctx context.Context, id uuid.UUID) (*domain.Document, io.ReadCloser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Document), args.Get(1).(io.ReadCloser), args.Error(2)
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
