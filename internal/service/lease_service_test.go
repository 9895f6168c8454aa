package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/lease-engine/internal/cache"
	"github.com/segyhp/lease-engine/internal/domain"
	"github.com/segyhp/lease-engine/internal/mocks"
	"github.com/segyhp/lease-engine/internal/repository"
	customError "github.com/segyhp/lease-engine/pkg/errors"
)

func newLeaseService(store *mocks.MockStore, c cache.Cache, now time.Time) *LeaseService {
	svc := NewLeaseService(store, c, testConfig(), testLogger())
	svc.now = fixedClock(now)
	return svc
}

func TestCreateLease_Success(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, day(2024, 1, 1))

	request := &domain.CreateLeaseRequest{
		CompanyID:  uuid.New(),
		UnitID:     uuid.New(),
		TenantID:   uuid.New(),
		StartDate:  domain.NewDate(day(2024, 1, 1)),
		RentAmount: decimal.RequireFromString("1500.00"),
	}

	store.LeaseRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.Lease) bool {
		return l.Status == domain.LeaseStatusDraft &&
			l.PaymentFrequency == domain.FrequencyMonthly &&
			l.PaymentDay == 1 &&
			l.UnitID == request.UnitID
	})).Return(nil)

	lease, err := svc.CreateLease(context.Background(), request)

	require.NoError(t, err)
	assert.Equal(t, domain.LeaseStatusDraft, lease.Status)
	assert.Nil(t, lease.EndDate)
	store.AssertExpectations(t)
}

func TestCreateLease_EndBeforeStart(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, day(2024, 1, 1))

	end := domain.NewDate(day(2023, 12, 31))
	request := &domain.CreateLeaseRequest{
		CompanyID:  uuid.New(),
		UnitID:     uuid.New(),
		TenantID:   uuid.New(),
		StartDate:  domain.NewDate(day(2024, 1, 1)),
		EndDate:    &end,
		RentAmount: decimal.RequireFromString("1500.00"),
	}

	_, err := svc.CreateLease(context.Background(), request)

	assert.ErrorIs(t, err, customError.ErrInvalidLease)
	store.LeaseRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetLease_NotFound(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, day(2024, 1, 1))
	id := uuid.New()

	store.LeaseRepo.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows)

	_, err := svc.GetLease(context.Background(), id)

	assert.ErrorIs(t, err, customError.ErrLeaseNotFound)
	assert.Equal(t, customError.ErrCodeNotFound, customError.Code(err))
}

func TestGetLease_DatabaseError(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, day(2024, 1, 1))
	id := uuid.New()

	store.LeaseRepo.On("GetByID", mock.Anything, id).Return(nil, errors.New("connection reset"))

	_, err := svc.GetLease(context.Background(), id)

	assert.Equal(t, customError.ErrCodeDatabaseError, customError.Code(err))
}

func TestListLeases_DefaultsAsOfToToday(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC))

	store.LeaseRepo.On("List", mock.Anything, mock.MatchedBy(func(f repository.LeaseFilter) bool {
		return f.AsOf.Equal(day(2024, 3, 10)) && f.ExpiringWithinDays == 30
	})).Return([]*domain.Lease{}, nil)

	leases, err := svc.ListLeases(context.Background(), repository.LeaseFilter{ExpiringWithinDays: 30})

	require.NoError(t, err)
	assert.Empty(t, leases)
	store.AssertExpectations(t)
}

func TestActivateLease(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, day(2024, 1, 1))

	lease := activeLease(day(2024, 1, 1), nil)
	lease.Status = domain.LeaseStatusDraft

	store.LeaseRepo.On("GetByIDForUpdate", mock.Anything, lease.ID).Return(lease, nil)
	store.LeaseRepo.On("Update", mock.Anything, lease).Return(nil)

	activated, err := svc.ActivateLease(context.Background(), lease.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.LeaseStatusActive, activated.Status)

	// a second activation is refused
	_, err = svc.ActivateLease(context.Background(), lease.ID)
	assert.ErrorIs(t, err, customError.ErrInvalidTransition)
	store.LeaseRepo.AssertNumberOfCalls(t, "Update", 1)
}

func TestGenerateSchedule_MonthlyLease(t *testing.T) {
	store := mocks.NewMockStore()
	mockCache := &mocks.MockCache{}
	svc := newLeaseService(store, mockCache, day(2024, 1, 1))

	lease := activeLease(day(2024, 1, 1), ptrTime(day(2024, 6, 1)))
	stored, err := lease.PlanPaymentSchedule(nil, 12, day(2024, 1, 1))
	require.NoError(t, err)

	store.LeaseRepo.On("GetByIDForUpdate", mock.Anything, lease.ID).Return(lease, nil)
	store.PaymentRepo.On("ListByLease", mock.Anything, lease.ID).Return([]*domain.Payment{}, nil).Once()
	store.PaymentRepo.On("CreateIfNotExists", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(true, nil)
	store.PaymentRepo.On("ListByLease", mock.Anything, lease.ID).Return(stored, nil).Once()
	mockCache.On("Delete", mock.Anything, []string{cache.LeaseSummaryKey(lease.ID)}).Return(nil)

	result, err := svc.GenerateSchedule(context.Background(), lease.ID)

	require.NoError(t, err)
	assert.True(t, result.Generated)
	require.Len(t, result.Created, 6)
	for i, p := range result.Created {
		assert.Equal(t, day(2024, time.Month(i+1), 1), p.DueDate)
		assert.True(t, p.Amount.Equal(decimal.RequireFromString("1000.00")))
		assert.True(t, p.RemainingAmount.Equal(p.Amount))
		assert.Equal(t, domain.PaymentStatusPending, p.Status)
	}
	assert.Len(t, result.Schedule, 6)
	store.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestGenerateSchedule_SecondRunCreatesNothing(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, day(2024, 1, 1))

	lease := activeLease(day(2024, 1, 1), ptrTime(day(2024, 6, 1)))
	planned, err := lease.PlanPaymentSchedule(nil, 12, day(2024, 1, 1))
	require.NoError(t, err)

	store.LeaseRepo.On("GetByIDForUpdate", mock.Anything, lease.ID).Return(lease, nil)
	store.PaymentRepo.On("ListByLease", mock.Anything, lease.ID).Return(planned, nil)

	result, err := svc.GenerateSchedule(context.Background(), lease.ID)

	require.NoError(t, err)
	assert.True(t, result.Generated)
	assert.Empty(t, result.Created)
	assert.Len(t, result.Schedule, 6)
	store.PaymentRepo.AssertNotCalled(t, "CreateIfNotExists", mock.Anything, mock.Anything)
}

func TestGenerateSchedule_ConcurrentInsertWins(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, day(2024, 1, 1))

	lease := activeLease(day(2024, 1, 1), ptrTime(day(2024, 3, 1)))

	store.LeaseRepo.On("GetByIDForUpdate", mock.Anything, lease.ID).Return(lease, nil)
	store.PaymentRepo.On("ListByLease", mock.Anything, lease.ID).Return([]*domain.Payment{}, nil)
	// another generator already stored February
	store.PaymentRepo.On("CreateIfNotExists", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.DueDate.Equal(day(2024, 2, 1))
	})).Return(false, nil)
	store.PaymentRepo.On("CreateIfNotExists", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(true, nil)

	result, err := svc.GenerateSchedule(context.Background(), lease.ID)

	require.NoError(t, err)
	require.Len(t, result.Created, 2)
	assert.Equal(t, day(2024, 1, 1), result.Created[0].DueDate)
	assert.Equal(t, day(2024, 3, 1), result.Created[1].DueDate)
}

func TestGenerateSchedule_InactiveLeaseIsNoOp(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, day(2024, 1, 1))

	lease := activeLease(day(2024, 1, 1), ptrTime(day(2024, 6, 1)))
	lease.Status = domain.LeaseStatusDraft

	store.LeaseRepo.On("GetByIDForUpdate", mock.Anything, lease.ID).Return(lease, nil)
	store.PaymentRepo.On("ListByLease", mock.Anything, lease.ID).Return([]*domain.Payment{}, nil)

	result, err := svc.GenerateSchedule(context.Background(), lease.ID)

	require.NoError(t, err)
	assert.False(t, result.Generated)
	assert.Empty(t, result.Created)
	store.PaymentRepo.AssertNotCalled(t, "CreateIfNotExists", mock.Anything, mock.Anything)
}

func TestGenerateSchedule_InvalidFrequency(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, day(2024, 1, 1))

	lease := activeLease(day(2024, 1, 1), nil)
	lease.PaymentFrequency = "weekly"

	store.LeaseRepo.On("GetByIDForUpdate", mock.Anything, lease.ID).Return(lease, nil)
	store.PaymentRepo.On("ListByLease", mock.Anything, lease.ID).Return([]*domain.Payment{}, nil)

	_, err := svc.GenerateSchedule(context.Background(), lease.ID)

	assert.ErrorIs(t, err, customError.ErrInvalidFrequency)
}

func TestTerminateLease_ReleasesUnit(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC))

	lease := activeLease(day(2024, 1, 1), ptrTime(day(2024, 12, 31)))
	unit := &domain.Unit{ID: lease.UnitID, Status: domain.UnitStatusOccupied}

	store.LeaseRepo.On("GetByIDForUpdate", mock.Anything, lease.ID).Return(lease, nil)
	store.UnitRepo.On("GetByIDForUpdate", mock.Anything, lease.UnitID).Return(unit, nil)
	store.LeaseRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Lease) bool {
		return l.Status == domain.LeaseStatusTerminated
	})).Return(nil)
	store.UnitRepo.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(u *domain.Unit) bool {
		return u.Status == domain.UnitStatusAvailable
	})).Return(nil)

	result, err := svc.TerminateLease(context.Background(), lease.ID, "tenant moved out", nil)

	require.NoError(t, err)
	assert.Equal(t, domain.LeaseStatusTerminated, result.Lease.Status)
	assert.Equal(t, day(2024, 4, 15), *result.Lease.TerminationDate)
	assert.Equal(t, "tenant moved out", *result.Lease.TerminationReason)
	assert.Equal(t, domain.UnitStatusAvailable, result.Unit.Status)
	store.AssertExpectations(t)
}

func TestTerminateLease_ExplicitDate(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, day(2024, 4, 15))

	lease := activeLease(day(2024, 1, 1), nil)
	unit := &domain.Unit{ID: lease.UnitID, Status: domain.UnitStatusOccupied}

	store.LeaseRepo.On("GetByIDForUpdate", mock.Anything, lease.ID).Return(lease, nil)
	store.UnitRepo.On("GetByIDForUpdate", mock.Anything, lease.UnitID).Return(unit, nil)
	store.LeaseRepo.On("Update", mock.Anything, lease).Return(nil)
	store.UnitRepo.On("UpdateStatus", mock.Anything, unit).Return(nil)

	result, err := svc.TerminateLease(context.Background(), lease.ID, "breach", ptrTime(day(2024, 5, 1)))

	require.NoError(t, err)
	assert.Equal(t, day(2024, 5, 1), *result.Lease.TerminationDate)
}

func TestTerminateLease_TerminalStateIsAnError(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, day(2024, 4, 15))

	lease := activeLease(day(2024, 1, 1), nil)
	lease.Status = domain.LeaseStatusRenewed

	store.LeaseRepo.On("GetByIDForUpdate", mock.Anything, lease.ID).Return(lease, nil)

	_, err := svc.TerminateLease(context.Background(), lease.ID, "too late", nil)

	assert.ErrorIs(t, err, customError.ErrInvalidTransition)
	store.UnitRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	store.LeaseRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTerminateLease_MissingUnitWritesNothing(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, day(2024, 4, 15))

	lease := activeLease(day(2024, 1, 1), nil)

	store.LeaseRepo.On("GetByIDForUpdate", mock.Anything, lease.ID).Return(lease, nil)
	store.UnitRepo.On("GetByIDForUpdate", mock.Anything, lease.UnitID).Return(nil, sql.ErrNoRows)

	_, err := svc.TerminateLease(context.Background(), lease.ID, "gone", nil)

	assert.ErrorIs(t, err, customError.ErrUnitNotFound)
	store.LeaseRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRenewLease(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, day(2024, 6, 1))

	lease := activeLease(day(2024, 1, 1), ptrTime(day(2024, 6, 30)))
	notes := "pets allowed"
	lease.Notes = &notes

	store.LeaseRepo.On("GetByIDForUpdate", mock.Anything, lease.ID).Return(lease, nil)
	store.LeaseRepo.On("Update", mock.Anything, lease).Return(nil)
	store.LeaseRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.Lease) bool {
		return l.ID != lease.ID && l.Status == domain.LeaseStatusDraft
	})).Return(nil)

	newRent := decimal.RequireFromString("1100.00")
	result, err := svc.RenewLease(context.Background(), lease.ID, day(2025, 6, 30), &newRent)

	require.NoError(t, err)
	assert.Equal(t, domain.LeaseStatusRenewed, result.Previous.Status)
	assert.Equal(t, day(2024, 7, 1), result.Renewal.StartDate)
	assert.Equal(t, day(2025, 6, 30), *result.Renewal.EndDate)
	assert.True(t, result.Renewal.RentAmount.Equal(newRent))
	assert.Equal(t, lease.UnitID, result.Renewal.UnitID)
	assert.Equal(t, "pets allowed", *result.Renewal.Notes)
	store.AssertExpectations(t)
}

func TestRenewLease_OpenEnded(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, day(2024, 6, 1))

	lease := activeLease(day(2024, 1, 1), nil)
	store.LeaseRepo.On("GetByIDForUpdate", mock.Anything, lease.ID).Return(lease, nil)

	_, err := svc.RenewLease(context.Background(), lease.ID, day(2025, 6, 30), nil)

	assert.ErrorIs(t, err, customError.ErrMissingEndDate)
	assert.Equal(t, domain.LeaseStatusActive, lease.Status)
	store.LeaseRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetSummary_CacheHit(t *testing.T) {
	store := mocks.NewMockStore()
	mockCache := &mocks.MockCache{}
	svc := newLeaseService(store, mockCache, day(2024, 4, 1))

	id := uuid.New()
	mockCache.On("GetJSON", mock.Anything, cache.LeaseSummaryKey(id), mock.AnythingOfType("*domain.LeaseSummary")).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*domain.LeaseSummary)
			dest.LeaseID = id
			dest.PaymentCount = 4
		}).
		Return(nil)

	summary, err := svc.GetSummary(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, 4, summary.PaymentCount)
	store.LeaseRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetSummary_CacheMissComputesAndStores(t *testing.T) {
	store := mocks.NewMockStore()
	mockCache := &mocks.MockCache{}
	svc := newLeaseService(store, mockCache, day(2024, 4, 1))

	lease := activeLease(day(2024, 1, 1), ptrTime(day(2024, 12, 31)))
	paid := pendingPayment("1000.00", day(2024, 1, 1))
	paid.Status = domain.PaymentStatusPaid
	paid.PaidAmount = paid.Amount
	paid.RemainingAmount = decimal.Zero
	partial := pendingPayment("1000.00", day(2024, 2, 1))
	partial.Status = domain.PaymentStatusPartial
	partial.PaidAmount = decimal.RequireFromString("600.00")
	partial.RemainingAmount = decimal.RequireFromString("400.00")
	late := pendingPayment("1000.00", day(2024, 3, 1))

	key := cache.LeaseSummaryKey(lease.ID)
	mockCache.On("GetJSON", mock.Anything, key, mock.Anything).Return(cache.ErrCacheMiss)
	store.LeaseRepo.On("GetByID", mock.Anything, lease.ID).Return(lease, nil)
	store.PaymentRepo.On("ListByLease", mock.Anything, lease.ID).
		Return([]*domain.Payment{paid, partial, late}, nil)
	mockCache.On("SetJSON", mock.Anything, key, mock.AnythingOfType("*domain.LeaseSummary"), 10*time.Minute).Return(nil)

	summary, err := svc.GetSummary(context.Background(), lease.ID)

	require.NoError(t, err)
	assert.True(t, summary.TotalPaid.Equal(decimal.RequireFromString("1000")))
	assert.True(t, summary.TotalOutstanding.Equal(decimal.RequireFromString("1400")))
	assert.Equal(t, 1, summary.OverdueCount)
	assert.Equal(t, 3, summary.PaymentCount)
	require.NotNil(t, summary.DaysRemaining)
	assert.Equal(t, 274, *summary.DaysRemaining)
	mockCache.AssertExpectations(t)
}

func TestGetSummary_CacheFailureFallsBack(t *testing.T) {
	store := mocks.NewMockStore()
	mockCache := &mocks.MockCache{}
	svc := newLeaseService(store, mockCache, day(2024, 4, 1))

	lease := activeLease(day(2024, 1, 1), nil)
	mockCache.On("GetJSON", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
	mockCache.On("SetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
	store.LeaseRepo.On("GetByID", mock.Anything, lease.ID).Return(lease, nil)
	store.PaymentRepo.On("ListByLease", mock.Anything, lease.ID).Return([]*domain.Payment{}, nil)

	summary, err := svc.GetSummary(context.Background(), lease.ID)

	require.NoError(t, err)
	assert.Nil(t, summary.DaysRemaining)
	assert.True(t, summary.IsActive)
}

func TestDeleteLease_NotFound(t *testing.T) {
	store := mocks.NewMockStore()
	svc := newLeaseService(store, nil, day(2024, 4, 1))
	id := uuid.New()

	store.LeaseRepo.On("SoftDelete", mock.Anything, id, day(2024, 4, 1)).Return(sql.ErrNoRows)

	err := svc.DeleteLease(context.Background(), id)

	assert.ErrorIs(t, err, customError.ErrLeaseNotFound)
}

func TestExpireEndedLeases(t *testing.T) {
	store := mocks.NewMockStore()
	mockCache := &mocks.MockCache{}
	svc := newLeaseService(store, mockCache, time.Date(2024, 7, 1, 0, 5, 0, 0, time.UTC))

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	store.LeaseRepo.On("ExpireEnded", mock.Anything, day(2024, 7, 1)).Return(ids, nil)
	mockCache.On("Delete", mock.Anything, []string{cache.LeaseSummaryKey(ids[0]), cache.LeaseSummaryKey(ids[1])}).Return(nil)

	count, err := svc.ExpireEndedLeases(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	mockCache.AssertExpectations(t)
}
