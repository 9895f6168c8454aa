package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/lease-engine/internal/domain"
	customError "github.com/segyhp/lease-engine/pkg/errors"
)

const documentColumns = `id, documentable_type, documentable_id, title, file_name, file_path, file_type, file_size,
	extension, document_type, description, document_date, uploaded_by, created_at, updated_at, deleted_at`

// softDeletedOwners lists the documentable tables that carry a deleted_at column
var softDeletedOwners = map[string]bool{
	domain.DocumentableLease:   true,
	domain.DocumentablePayment: true,
}

type documentRepository struct {
	db Queryer
}

func NewDocumentRepository(db Queryer) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, documentable_type, documentable_id, title, file_name, file_path, file_type,
			file_size, extension, document_type, description, document_date, uploaded_by, created_at, updated_at)
		VALUES (:id, :documentable_type, :documentable_id, :title, :file_name, :file_path, :file_type,
			:file_size, :extension, :document_type, :description, :document_date, :uploaded_by, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, doc)
	return err
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND deleted_at IS NULL`

	var doc domain.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ListByOwner(ctx context.Context, owner domain.Documentable) ([]*domain.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE documentable_type = $1 AND documentable_id = $2 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	docs := []*domain.Document{}
	if err := r.db.SelectContext(ctx, &docs, query, owner.Type, owner.ID); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE documents SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *documentRepository) OwnerExists(ctx context.Context, owner domain.Documentable) (bool, error) {
	table := owner.Table()
	if table == "" {
		return false, customError.WrapInvalidDocumentableKind(owner.Type)
	}

	// table comes from the fixed lookup, never from input
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1`, table)
	if softDeletedOwners[owner.Type] {
		query += ` AND deleted_at IS NULL`
	}
	query += `)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, owner.ID); err != nil {
		return false, err
	}
	return exists, nil
}
