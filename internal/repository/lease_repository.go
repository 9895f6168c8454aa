package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/lease-engine/internal/domain"
)

const leaseColumns = `id, company_id, unit_id, tenant_id, start_date, end_date, rent_amount, deposit_amount,
	payment_frequency, payment_day, status, termination_date, termination_reason, notes, special_terms,
	created_at, updated_at, deleted_at`

type leaseRepository struct {
	db Queryer
}

func NewLeaseRepository(db Queryer) LeaseRepository {
	return &leaseRepository{db: db}
}

func (r *leaseRepository) Create(ctx context.Context, lease *domain.Lease) error {
	query := `
		INSERT INTO leases (id, company_id, unit_id, tenant_id, start_date, end_date, rent_amount, deposit_amount,
			payment_frequency, payment_day, status, termination_date, termination_reason, notes, special_terms,
			created_at, updated_at)
		VALUES (:id, :company_id, :unit_id, :tenant_id, :start_date, :end_date, :rent_amount, :deposit_amount,
			:payment_frequency, :payment_day, :status, :termination_date, :termination_reason, :notes, :special_terms,
			:created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, lease)
	return err
}

func (r *leaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE id = $1 AND deleted_at IS NULL`

	var lease domain.Lease
	if err := r.db.GetContext(ctx, &lease, query, id); err != nil {
		return nil, err
	}
	return &lease, nil
}

func (r *leaseRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`

	var lease domain.Lease
	if err := r.db.GetContext(ctx, &lease, query, id); err != nil {
		return nil, err
	}
	return &lease, nil
}

func (r *leaseRepository) Update(ctx context.Context, lease *domain.Lease) error {
	query := `
		UPDATE leases
		SET start_date = :start_date, end_date = :end_date, rent_amount = :rent_amount, deposit_amount = :deposit_amount,
			payment_frequency = :payment_frequency, payment_day = :payment_day, status = :status,
			termination_date = :termination_date, termination_reason = :termination_reason,
			notes = :notes, special_terms = :special_terms, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL
	`

	res, err := r.db.NamedExecContext(ctx, query, lease)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *leaseRepository) List(ctx context.Context, filter LeaseFilter) ([]*domain.Lease, error) {
	conds := []string{"deleted_at IS NULL"}
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.CompanyID != nil {
		conds = append(conds, "company_id = "+arg(*filter.CompanyID))
	}
	if filter.UnitID != nil {
		conds = append(conds, "unit_id = "+arg(*filter.UnitID))
	}
	if filter.TenantID != nil {
		conds = append(conds, "tenant_id = "+arg(*filter.TenantID))
	}

	asOf := filter.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	if filter.ExpiringWithinDays > 0 {
		from := arg(asOf)
		to := arg(asOf.AddDate(0, 0, filter.ExpiringWithinDays))
		conds = append(conds, fmt.Sprintf("status = 'active' AND end_date IS NOT NULL AND end_date BETWEEN %s AND %s", from, to))
	}
	if filter.ExpiredOnly {
		conds = append(conds, "status = 'active' AND end_date IS NOT NULL AND end_date < "+arg(asOf))
	}

	query := `SELECT ` + leaseColumns + ` FROM leases WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	leases := []*domain.Lease{}
	if err := r.db.SelectContext(ctx, &leases, query, args...); err != nil {
		return nil, err
	}
	return leases, nil
}

func (r *leaseRepository) ExpireEnded(ctx context.Context, asOf time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE leases
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND end_date IS NOT NULL AND end_date < $1 AND deleted_at IS NULL
		RETURNING id
	`

	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, asOf); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *leaseRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE leases SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return err
	}
	return mustAffect(res)
}
