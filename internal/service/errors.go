package service

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	customError "github.com/segyhp/lease-engine/pkg/errors"
)

func leaseLookupError(id uuid.UUID, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapLeaseNotFound(id.String())
	}
	return customError.WrapDatabaseError(err)
}

func paymentLookupError(id uuid.UUID, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapPaymentNotFound(id.String())
	}
	return customError.WrapDatabaseError(err)
}

func unitLookupError(id uuid.UUID, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapUnitNotFound(id.String())
	}
	return customError.WrapDatabaseError(err)
}

func documentLookupError(id uuid.UUID, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapDocumentNotFound(id.String())
	}
	return customError.WrapDatabaseError(err)
}
