package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLeaseNotFound           = errors.New("lease not found")
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrUnitNotFound            = errors.New("unit not found")
	ErrDocumentNotFound        = errors.New("document not found")
	ErrDocumentableNotFound    = errors.New("documentable owner not found")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrInvalidFrequency        = errors.New("invalid payment frequency")
	ErrMissingEndDate          = errors.New("lease has no end date")
	ErrConcurrentModification  = errors.New("concurrent modification")
	ErrInvalidPaymentAmount    = errors.New("invalid payment amount")
	ErrOverpayment             = errors.New("payment exceeds remaining amount")
	ErrInvalidLease            = errors.New("invalid lease")
	ErrInvalidDocumentableKind = errors.New("invalid documentable type")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrDocumentTooLarge        = errors.New("document exceeds maximum upload size")
	ErrInvalidDocument         = errors.New("invalid document")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeInvalidTransition      = "INVALID_TRANSITION"
	ErrCodeInvalidFrequency       = "INVALID_FREQUENCY"
	ErrCodeMissingEndDate         = "MISSING_END_DATE"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	ErrCodeInvalidPaymentAmount   = "INVALID_PAYMENT_AMOUNT"
	ErrCodeOverpayment            = "OVERPAYMENT"
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeDocumentTooLarge       = "DOCUMENT_TOO_LARGE"
	ErrCodeDatabaseError          = "DATABASE_ERROR"
	ErrCodeStorageError           = "STORAGE_ERROR"
)

// Code returns the business code carried by err, or "" when err is not a BusinessError.
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Wrap common errors with business context
func WrapLeaseNotFound(leaseID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("Lease with ID %s not found", leaseID),
		ErrLeaseNotFound,
	)
}

func WrapPaymentNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("Payment with ID %s not found", paymentID),
		ErrPaymentNotFound,
	)
}

func WrapUnitNotFound(unitID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("Unit with ID %s not found", unitID),
		ErrUnitNotFound,
	)
}

func WrapDocumentNotFound(documentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("Document with ID %s not found", documentID),
		ErrDocumentNotFound,
	)
}

func WrapDocumentableNotFound(kind, id string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("%s with ID %s not found", kind, id),
		ErrDocumentableNotFound,
	)
}

func WrapInvalidTransition(entity, from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("%s cannot move from %q to %q", entity, from, to),
		ErrInvalidTransition,
	)
}

func WrapInvalidFrequency(frequency string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidFrequency,
		fmt.Sprintf("Unknown payment frequency %q", frequency),
		ErrInvalidFrequency,
	)
}

func WrapMissingEndDate(leaseID string) *BusinessError {
	return NewBusinessError(
		ErrCodeMissingEndDate,
		fmt.Sprintf("Lease with ID %s is open-ended and cannot be renewed", leaseID),
		ErrMissingEndDate,
	)
}

func WrapConcurrentModification(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrentModification,
		"record was modified concurrently, retry the operation",
		fmt.Errorf("%w: %v", ErrConcurrentModification, err),
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapOverpayment(amount, remaining string) *BusinessError {
	return NewBusinessError(
		ErrCodeOverpayment,
		fmt.Sprintf("Payment amount %s exceeds remaining amount %s", amount, remaining),
		ErrOverpayment,
	)
}

func WrapInvalidLease(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		reason,
		ErrInvalidLease,
	)
}

func WrapInvalidPaymentMethod(method string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		fmt.Sprintf("Unknown payment method %q", method),
		ErrInvalidPaymentMethod,
	)
}

func WrapInvalidDocumentableKind(kind string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		fmt.Sprintf("Documents cannot be attached to %q", kind),
		ErrInvalidDocumentableKind,
	)
}

func WrapInvalidDocument(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		reason,
		ErrInvalidDocument,
	)
}

func WrapDocumentTooLarge(size, limit int64) *BusinessError {
	return NewBusinessError(
		ErrCodeDocumentTooLarge,
		fmt.Sprintf("Document of %d bytes exceeds limit of %d bytes", size, limit),
		ErrDocumentTooLarge,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapStorageError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeStorageError,
		"file storage operation failed",
		err,
	)
}
