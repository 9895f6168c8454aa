package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/lease-engine/internal/domain"
)

// LeaseFilter narrows lease listings. Zero values mean "no filter".
type LeaseFilter struct {
	Status    string
	CompanyID *uuid.UUID
	UnitID    *uuid.UUID
	TenantID  *uuid.UUID
	// ExpiringWithinDays keeps active leases ending between AsOf and AsOf+N days
	ExpiringWithinDays int
	// ExpiredOnly keeps active leases whose end date is before AsOf
	ExpiredOnly bool
	AsOf        time.Time
	Limit       int
	Offset      int
}

// LeaseRepository defines the interface for lease data operations
type LeaseRepository interface {
	// Create inserts a new lease
	Create(ctx context.Context, lease *domain.Lease) error

	// GetByID retrieves a lease that has not been soft deleted
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lease, error)

	// GetByIDForUpdate retrieves a lease and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Lease, error)

	// Update persists the mutable fields of a lease
	Update(ctx context.Context, lease *domain.Lease) error

	// List returns leases matching the filter, newest first
	List(ctx context.Context, filter LeaseFilter) ([]*domain.Lease, error)

	// ExpireEnded moves active leases that ended before asOf to expired and returns their IDs
	ExpireEnded(ctx context.Context, asOf time.Time) ([]uuid.UUID, error)

	// SoftDelete marks a lease deleted
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// CreateIfNotExists inserts the payment unless the lease already has one on that due date.
	// It reports whether a row was inserted.
	CreateIfNotExists(ctx context.Context, payment *domain.Payment) (bool, error)

	// GetByID retrieves a payment that has not been soft deleted
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// GetByIDForUpdate retrieves a payment and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// Update persists the mutable fields of a payment
	Update(ctx context.Context, payment *domain.Payment) error

	// ListByLease returns the lease's payments ordered by due date
	ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*domain.Payment, error)

	// ListOverdueCandidates returns pending payments due before asOf
	ListOverdueCandidates(ctx context.Context, asOf time.Time, limit int) ([]*domain.Payment, error)
}

// UnitRepository defines the interface for the unit operations the lease lifecycle needs
type UnitRepository interface {
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Unit, error)
	UpdateStatus(ctx context.Context, unit *domain.Unit) error
}

// DocumentRepository defines the interface for document data operations
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	ListByOwner(ctx context.Context, owner domain.Documentable) ([]*domain.Document, error)
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error

	// OwnerExists checks the owner row through the documentable lookup table
	OwnerExists(ctx context.Context, owner domain.Documentable) (bool, error)
}

// Store groups the repositories so they can share one transaction
type Store interface {
	Leases() LeaseRepository
	Payments() PaymentRepository
	Units() UnitRepository
	Documents() DocumentRepository

	// WithTx runs fn inside a transaction. Serialization failures and deadlocks
	// are retried; when retries run out the error is a concurrent modification.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}
