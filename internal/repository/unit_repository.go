package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/segyhp/lease-engine/internal/domain"
)

type unitRepository struct {
	db Queryer
}

func NewUnitRepository(db Queryer) UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Unit, error) {
	query := `
		SELECT id, property_id, unit_number, rent_price, status, type, created_at, updated_at
		FROM units
		WHERE id = $1
		FOR UPDATE
	`

	var unit domain.Unit
	if err := r.db.GetContext(ctx, &unit, query, id); err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *unitRepository) UpdateStatus(ctx context.Context, unit *domain.Unit) error {
	query := `UPDATE units SET status = $2, updated_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, unit.ID, unit.Status, unit.UpdatedAt)
	if err != nil {
		return err
	}
	return mustAffect(res)
}
