package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	customError "github.com/segyhp/lease-engine/pkg/errors"
)

// Queryer is satisfied by both *sqlx.DB and *sqlx.Tx
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

// Postgres SQLSTATEs worth retrying a transaction for
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

type sqlStore struct {
	db      *sqlx.DB
	q       Queryer
	inTx    bool
	retries int
}

// NewStore returns a Store backed by db. retries is how many extra attempts a
// conflicting transaction gets.
func NewStore(db *sqlx.DB, retries int) Store {
	return &sqlStore{db: db, q: db, retries: retries}
}

func (s *sqlStore) Leases() LeaseRepository       { return NewLeaseRepository(s.q) }
func (s *sqlStore) Payments() PaymentRepository   { return NewPaymentRepository(s.q) }
func (s *sqlStore) Units() UnitRepository         { return NewUnitRepository(s.q) }
func (s *sqlStore) Documents() DocumentRepository { return NewDocumentRepository(s.q) }

func (s *sqlStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		err = s.runTx(ctx, fn)
		if !isConflict(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return customError.WrapConcurrentModification(err)
}

func (s *sqlStore) runTx(ctx context.Context, fn func(tx Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&sqlStore{db: s.db, q: tx, inTx: true}); err != nil {
		return err
	}
	return tx.Commit()
}

func isConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqSerializationFailure || pqErr.Code == pqDeadlockDetected
	}
	return false
}

// mustAffect turns an update that matched nothing into sql.ErrNoRows
func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
