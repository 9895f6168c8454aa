package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/lease-engine/internal/domain"
)

const paymentColumns = `id, lease_id, amount, due_date, payment_date, payment_method, reference_number, check_number,
	status, paid_amount, remaining_amount, notes, recorded_by, created_at, updated_at, deleted_at`

type paymentRepository struct {
	db Queryer
}

func NewPaymentRepository(db Queryer) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreateIfNotExists(ctx context.Context, payment *domain.Payment) (bool, error) {
	// Backed by the partial unique index on (lease_id, due_date)
	query := `
		INSERT INTO payments (id, lease_id, amount, due_date, payment_date, payment_method, reference_number,
			check_number, status, paid_amount, remaining_amount, notes, recorded_by, created_at, updated_at)
		VALUES (:id, :lease_id, :amount, :due_date, :payment_date, :payment_method, :reference_number,
			:check_number, :status, :paid_amount, :remaining_amount, :notes, :recorded_by, :created_at, :updated_at)
		ON CONFLICT (lease_id, due_date) WHERE deleted_at IS NULL DO NOTHING
	`

	res, err := r.db.NamedExecContext(ctx, query, payment)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 AND deleted_at IS NULL`

	var payment domain.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`

	var payment domain.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET payment_date = :payment_date, payment_method = :payment_method, reference_number = :reference_number,
			check_number = :check_number, status = :status, paid_amount = :paid_amount,
			remaining_amount = :remaining_amount, notes = :notes, recorded_by = :recorded_by, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL
	`

	res, err := r.db.NamedExecContext(ctx, query, payment)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *paymentRepository) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE lease_id = $1 AND deleted_at IS NULL ORDER BY due_date`

	payments := []*domain.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, leaseID); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) ListOverdueCandidates(ctx context.Context, asOf time.Time, limit int) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = 'pending' AND due_date < $1 AND deleted_at IS NULL
		ORDER BY due_date
		LIMIT $2
	`

	payments := []*domain.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, asOf, limit); err != nil {
		return nil, err
	}
	return payments, nil
}
