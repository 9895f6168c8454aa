package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/lease-engine/internal/cache"
	"github.com/segyhp/lease-engine/internal/config"
	"github.com/segyhp/lease-engine/internal/domain"
	"github.com/segyhp/lease-engine/internal/repository"
	customError "github.com/segyhp/lease-engine/pkg/errors"
)

type PaymentService struct {
	store  repository.Store
	cache  cache.Cache
	config *config.Config
	logger *slog.Logger
	now    func() time.Time
}

func NewPaymentService(
	store repository.Store,
	cache cache.Cache,
	config *config.Config,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		store:  store,
		cache:  cache,
		config: config,
		logger: logger,
		now:    clockIn(config.GetSchedulerLocation()),
	}
}

func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	payment, err := s.store.Payments().GetByID(ctx, id)
	if err != nil {
		return nil, paymentLookupError(id, err)
	}
	return payment, nil
}

// RecordPayment applies rec to the payment under a row lock
func (s *PaymentService) RecordPayment(ctx context.Context, id uuid.UUID, rec domain.PaymentRecord) (*domain.Payment, error) {
	var payment *domain.Payment
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		p, err := tx.Payments().GetByIDForUpdate(ctx, id)
		if err != nil {
			return paymentLookupError(id, err)
		}
		if err := p.RecordPayment(rec, s.config.GetOverpaymentPolicy(), s.now()); err != nil {
			return err
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return customError.WrapDatabaseError(err)
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, payment.LeaseID)
	s.logger.InfoContext(ctx, "payment recorded",
		"payment_id", id,
		"lease_id", payment.LeaseID,
		"amount", rec.Amount.StringFixed(2),
		"status", payment.Status,
		"remaining", payment.RemainingAmount.StringFixed(2),
	)
	return payment, nil
}

// MarkAsOverdue flags the payment overdue when it is pending and past due.
// Anything else leaves it unchanged and Marked is false.
func (s *PaymentService) MarkAsOverdue(ctx context.Context, id uuid.UUID) (*domain.OverdueResponse, error) {
	result := &domain.OverdueResponse{}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		p, err := tx.Payments().GetByIDForUpdate(ctx, id)
		if err != nil {
			return paymentLookupError(id, err)
		}

		result.Payment = p
		if !p.MarkAsOverdue(s.now()) {
			return nil
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return customError.WrapDatabaseError(err)
		}
		result.Marked = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Marked {
		s.invalidateSummary(ctx, result.Payment.LeaseID)
		s.logger.InfoContext(ctx, "payment marked overdue", "payment_id", id, "lease_id", result.Payment.LeaseID)
	}
	return result, nil
}

// BulkMarkOverdue runs MarkAsOverdue for each id in its own transaction.
// Unknown ids are skipped; any other failure stops the run.
func (s *PaymentService) BulkMarkOverdue(ctx context.Context, ids []uuid.UUID) (*domain.BulkOverdueResponse, error) {
	result := &domain.BulkOverdueResponse{Requested: len(ids)}

	for _, id := range ids {
		res, err := s.MarkAsOverdue(ctx, id)
		if errors.Is(err, customError.ErrPaymentNotFound) {
			s.logger.WarnContext(ctx, "skipping unknown payment", "payment_id", id)
			continue
		}
		if err != nil {
			return result, err
		}
		if res.Marked {
			result.Marked++
		}
	}
	return result, nil
}

// CancelPayment voids a pending payment
func (s *PaymentService) CancelPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var payment *domain.Payment
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		p, err := tx.Payments().GetByIDForUpdate(ctx, id)
		if err != nil {
			return paymentLookupError(id, err)
		}
		if err := p.Cancel(s.now()); err != nil {
			return err
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return customError.WrapDatabaseError(err)
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, payment.LeaseID)
	s.logger.InfoContext(ctx, "payment cancelled", "payment_id", id, "lease_id", payment.LeaseID)
	return payment, nil
}

// SweepOverdue marks every pending payment due before today as overdue, in
// batches of the configured size, and returns how many changed
func (s *PaymentService) SweepOverdue(ctx context.Context) (int, error) {
	today := calendarDate(s.now())
	batchSize := s.config.Scheduler.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	total := 0
	for {
		candidates, err := s.store.Payments().ListOverdueCandidates(ctx, today, batchSize)
		if err != nil {
			return total, customError.WrapDatabaseError(err)
		}

		marked := 0
		for _, candidate := range candidates {
			// Re-checked under the row lock, a concurrent payment may have landed.
			res, err := s.MarkAsOverdue(ctx, candidate.ID)
			if errors.Is(err, customError.ErrPaymentNotFound) {
				continue
			}
			if err != nil {
				return total, err
			}
			if res.Marked {
				marked++
			}
		}
		total += marked

		if len(candidates) < batchSize || marked == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}

	s.logger.InfoContext(ctx, "overdue sweep finished", "marked", total, "as_of", today.Format(time.DateOnly))
	return total, nil
}

func (s *PaymentService) invalidateSummary(ctx context.Context, leaseID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.LeaseSummaryKey(leaseID)); err != nil {
		s.logger.WarnContext(ctx, "lease summary cache invalidation failed", "lease_id", leaseID, "error", err)
	}
}
