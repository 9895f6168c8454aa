package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/lease-engine/internal/cache"
	"github.com/segyhp/lease-engine/internal/config"
	"github.com/segyhp/lease-engine/internal/domain"
	"github.com/segyhp/lease-engine/internal/repository"
	customError "github.com/segyhp/lease-engine/pkg/errors"
	"github.com/segyhp/lease-engine/pkg/utils"
)

type LeaseService struct {
	store  repository.Store
	cache  cache.Cache
	config *config.Config
	logger *slog.Logger
	now    func() time.Time
}

// NewLeaseService wires the lease lifecycle. cache may be nil, in which case
// summaries are always computed.
func NewLeaseService(
	store repository.Store,
	cache cache.Cache,
	config *config.Config,
	logger *slog.Logger,
) *LeaseService {
	return &LeaseService{
		store:  store,
		cache:  cache,
		config: config,
		logger: logger,
		now:    clockIn(config.GetSchedulerLocation()),
	}
}

// CreateLease stores a new lease in draft
func (s *LeaseService) CreateLease(ctx context.Context, request *domain.CreateLeaseRequest) (*domain.Lease, error) {
	lease := request.ToLease(s.now())
	if err := lease.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Leases().Create(ctx, lease); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "lease created", "lease_id", lease.ID, "unit_id", lease.UnitID)
	return lease, nil
}

func (s *LeaseService) GetLease(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	lease, err := s.store.Leases().GetByID(ctx, id)
	if err != nil {
		return nil, leaseLookupError(id, err)
	}
	return lease, nil
}

// ListLeases returns leases matching filter. The expiring and expired
// filters are evaluated against today when AsOf is unset.
func (s *LeaseService) ListLeases(ctx context.Context, filter repository.LeaseFilter) ([]*domain.Lease, error) {
	if filter.AsOf.IsZero() {
		filter.AsOf = calendarDate(s.now())
	}

	leases, err := s.store.Leases().List(ctx, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return leases, nil
}

// ActivateLease moves a draft lease to active
func (s *LeaseService) ActivateLease(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	var lease *domain.Lease
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		l, err := tx.Leases().GetByIDForUpdate(ctx, id)
		if err != nil {
			return leaseLookupError(id, err)
		}
		if err := l.Activate(s.now()); err != nil {
			return err
		}
		if err := tx.Leases().Update(ctx, l); err != nil {
			return customError.WrapDatabaseError(err)
		}
		lease = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummaries(ctx, id)
	s.logger.InfoContext(ctx, "lease activated", "lease_id", id)
	return lease, nil
}

// TerminateLease ends the lease and puts its unit back on the market.
// Both rows are locked and written in one transaction. date defaults to today.
func (s *LeaseService) TerminateLease(ctx context.Context, id uuid.UUID, reason string, date *time.Time) (*domain.TerminateLeaseResponse, error) {
	now := s.now()
	terminationDate := now
	if date != nil && !date.IsZero() {
		terminationDate = *date
	}

	result := &domain.TerminateLeaseResponse{}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		lease, err := tx.Leases().GetByIDForUpdate(ctx, id)
		if err != nil {
			return leaseLookupError(id, err)
		}
		if err := lease.Terminate(reason, terminationDate, now); err != nil {
			return err
		}

		unit, err := tx.Units().GetByIDForUpdate(ctx, lease.UnitID)
		if err != nil {
			return unitLookupError(lease.UnitID, err)
		}
		unit.Release(now)

		if err := tx.Leases().Update(ctx, lease); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := tx.Units().UpdateStatus(ctx, unit); err != nil {
			return customError.WrapDatabaseError(err)
		}

		result.Lease = lease
		result.Unit = unit
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummaries(ctx, id)
	s.logger.InfoContext(ctx, "lease terminated",
		"lease_id", id,
		"unit_id", result.Unit.ID,
		"termination_date", result.Lease.TerminationDate.Format(time.DateOnly),
	)
	return result, nil
}

// RenewLease marks the lease renewed and stores its draft successor in the
// same transaction. newRent nil keeps the current rent.
func (s *LeaseService) RenewLease(ctx context.Context, id uuid.UUID, newEndDate time.Time, newRent *decimal.Decimal) (*domain.RenewLeaseResponse, error) {
	now := s.now()

	result := &domain.RenewLeaseResponse{}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		lease, err := tx.Leases().GetByIDForUpdate(ctx, id)
		if err != nil {
			return leaseLookupError(id, err)
		}

		renewal, err := lease.Renew(newEndDate, newRent, now)
		if err != nil {
			return err
		}

		if err := tx.Leases().Update(ctx, lease); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := tx.Leases().Create(ctx, renewal); err != nil {
			return customError.WrapDatabaseError(err)
		}

		result.Previous = lease
		result.Renewal = renewal
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummaries(ctx, id)
	s.logger.InfoContext(ctx, "lease renewed", "lease_id", id, "renewal_id", result.Renewal.ID)
	return result, nil
}

// GenerateSchedule creates the pending payments missing from an active
// lease's schedule. Running it again creates nothing. A lease that is not
// active is left alone and Generated is false.
func (s *LeaseService) GenerateSchedule(ctx context.Context, id uuid.UUID) (*domain.ScheduleResponse, error) {
	now := s.now()

	result := &domain.ScheduleResponse{LeaseID: id, Created: []*domain.Payment{}}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		// The lease lock serializes generators for the same lease.
		lease, err := tx.Leases().GetByIDForUpdate(ctx, id)
		if err != nil {
			return leaseLookupError(id, err)
		}

		existing, err := tx.Payments().ListByLease(ctx, id)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		if !lease.IsActive() {
			result.Generated = false
			result.Created = []*domain.Payment{}
			result.Schedule = existing
			return nil
		}

		planned, err := lease.PlanPaymentSchedule(existing, s.config.Business.DefaultTermMonths, now)
		if err != nil {
			return err
		}

		created := make([]*domain.Payment, 0, len(planned))
		for _, payment := range planned {
			inserted, err := tx.Payments().CreateIfNotExists(ctx, payment)
			if err != nil {
				return customError.WrapDatabaseError(err)
			}
			if inserted {
				created = append(created, payment)
			}
		}

		schedule := existing
		if len(created) > 0 {
			if schedule, err = tx.Payments().ListByLease(ctx, id); err != nil {
				return customError.WrapDatabaseError(err)
			}
		}

		result.Generated = true
		result.Created = created
		result.Schedule = schedule
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.Created) > 0 {
		s.invalidateSummaries(ctx, id)
	}
	s.logger.InfoContext(ctx, "payment schedule generated",
		"lease_id", id,
		"generated", result.Generated,
		"created", len(result.Created),
	)
	return result, nil
}

// ListPayments returns the lease's payments ordered by due date
func (s *LeaseService) ListPayments(ctx context.Context, id uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.GetLease(ctx, id); err != nil {
		return nil, err
	}

	payments, err := s.store.Payments().ListByLease(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

// GetSummary returns the lease's derived totals, served from the cache when possible
func (s *LeaseService) GetSummary(ctx context.Context, id uuid.UUID) (*domain.LeaseSummary, error) {
	key := cache.LeaseSummaryKey(id)

	if s.cache != nil {
		var cached domain.LeaseSummary
		err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "lease summary cache read failed", "lease_id", id, "error", err)
		}
	}

	lease, err := s.GetLease(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.Payments().ListByLease(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	summary := lease.Summarize(payments, s.now())

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, summary, s.config.Redis.CacheTTL); err != nil {
			s.logger.WarnContext(ctx, "lease summary cache write failed", "lease_id", id, "error", err)
		}
	}
	return summary, nil
}

// DeleteLease soft deletes the lease
func (s *LeaseService) DeleteLease(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Leases().SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapLeaseNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	s.invalidateSummaries(ctx, id)
	s.logger.InfoContext(ctx, "lease deleted", "lease_id", id)
	return nil
}

// ExpireEndedLeases moves every active lease whose end date is before today
// to expired and returns how many changed
func (s *LeaseService) ExpireEndedLeases(ctx context.Context) (int, error) {
	today := calendarDate(s.now())

	ids, err := s.store.Leases().ExpireEnded(ctx, today)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	s.invalidateSummaries(ctx, ids...)
	s.logger.InfoContext(ctx, "expired ended leases", "count", len(ids), "as_of", today.Format(time.DateOnly))
	return len(ids), nil
}

func (s *LeaseService) invalidateSummaries(ctx context.Context, leaseIDs ...uuid.UUID) {
	if s.cache == nil || len(leaseIDs) == 0 {
		return
	}

	keys := make([]string, len(leaseIDs))
	for i, id := range leaseIDs {
		keys[i] = cache.LeaseSummaryKey(id)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.WarnContext(ctx, "lease summary cache invalidation failed", "count", len(keys), "error", err)
	}
}

// clockIn returns a clock reporting the current time in loc
func clockIn(loc *time.Location) func() time.Time {
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// calendarDate is t's calendar day at UTC midnight, the form DATE columns are compared with
func calendarDate(t time.Time) time.Time {
	return domain.NewDate(utils.DateOnly(t)).Time
}
