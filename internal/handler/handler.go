package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/segyhp/lease-engine/internal/domain"
	"github.com/segyhp/lease-engine/internal/repository"
	customError "github.com/segyhp/lease-engine/pkg/errors"
	"github.com/segyhp/lease-engine/pkg/response"
)

// LeaseService is the lease behaviour the HTTP layer depends on
type LeaseService interface {
	CreateLease(ctx context.Context, request *domain.CreateLeaseRequest) (*domain.Lease, error)
	GetLease(ctx context.Context, id uuid.UUID) (*domain.Lease, error)
	ListLeases(ctx context.Context, filter repository.LeaseFilter) ([]*domain.Lease, error)
	ActivateLease(ctx context.Context, id uuid.UUID) (*domain.Lease, error)
	TerminateLease(ctx context.Context, id uuid.UUID, reason string, date *time.Time) (*domain.TerminateLeaseResponse, error)
	RenewLease(ctx context.Context, id uuid.UUID, newEndDate time.Time, newRent *decimal.Decimal) (*domain.RenewLeaseResponse, error)
	GenerateSchedule(ctx context.Context, id uuid.UUID) (*domain.ScheduleResponse, error)
	ListPayments(ctx context.Context, id uuid.UUID) ([]*domain.Payment, error)
	GetSummary(ctx context.Context, id uuid.UUID) (*domain.LeaseSummary, error)
	DeleteLease(ctx context.Context, id uuid.UUID) error
}

// PaymentService is the payment behaviour the HTTP layer depends on
type PaymentService interface {
	GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	RecordPayment(ctx context.Context, id uuid.UUID, rec domain.PaymentRecord) (*domain.Payment, error)
	MarkAsOverdue(ctx context.Context, id uuid.UUID) (*domain.OverdueResponse, error)
	BulkMarkOverdue(ctx context.Context, ids []uuid.UUID) (*domain.BulkOverdueResponse, error)
	CancelPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
}

// DocumentService is the document behaviour the HTTP layer depends on
type DocumentService interface {
	UploadDocument(ctx context.Context, request *domain.UploadDocumentRequest, content io.Reader) (*domain.Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	ListDocuments(ctx context.Context, kind string, ownerID uuid.UUID) ([]*domain.Document, error)
	OpenDocument(ctx context.Context, id uuid.UUID) (*domain.Document, io.ReadCloser, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}

// maxJSONBody caps JSON request bodies
const maxJSONBody = 1 << 20

// newValidator returns a validator that understands decimal amounts
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	v.RegisterStructValidation(moneyAmounts,
		domain.CreateLeaseRequest{}, domain.RenewLeaseRequest{}, domain.RecordPaymentRequest{})
	return v
}

// moneyAmounts rejects amounts a NUMERIC(10,2) column would round or overflow.
// It runs on the raw decimals, before any float conversion.
func moneyAmounts(sl validator.StructLevel) {
	check := func(d decimal.Decimal, field, structField string) {
		if !domain.ValidMoney(d) {
			sl.ReportError(d, field, structField, "money", "")
		}
	}

	switch r := sl.Current().Interface().(type) {
	case domain.CreateLeaseRequest:
		check(r.RentAmount, "rent_amount", "RentAmount")
		if r.DepositAmount != nil {
			check(*r.DepositAmount, "deposit_amount", "DepositAmount")
		}
	case domain.RenewLeaseRequest:
		if r.NewRentAmount != nil {
			check(*r.NewRentAmount, "new_rent_amount", "NewRentAmount")
		}
	case domain.RecordPaymentRequest:
		check(r.Amount, "amount", "Amount")
	}
}

// decodeJSON reads the request body into dest and validates it.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v *validator.Validate, dest interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := decoder.Decode(dest); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}

	if err := v.Struct(dest); err != nil {
		response.UnprocessableEntity(w, "Validation failed", validationError(err))
		return false
	}
	return true
}

// validationError flattens validator errors into one readable message
func validationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		if fe.Param() != "" {
			messages = append(messages, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			messages = append(messages, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}

// pathID parses a UUID route variable, writing a 400 when it is malformed
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, fmt.Sprintf("Invalid %s", name), err)
		return uuid.Nil, false
	}
	return id, true
}

// statusFor maps a business error code to an HTTP status
func statusFor(code string) int {
	switch code {
	case customError.ErrCodeNotFound:
		return http.StatusNotFound
	case customError.ErrCodeInvalidTransition, customError.ErrCodeConcurrentModification:
		return http.StatusConflict
	case customError.ErrCodeValidation,
		customError.ErrCodeInvalidFrequency,
		customError.ErrCodeMissingEndDate,
		customError.ErrCodeInvalidPaymentAmount,
		customError.ErrCodeOverpayment:
		return http.StatusUnprocessableEntity
	case customError.ErrCodeDocumentTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a service error. Infrastructure failures are logged and
// reported without their cause.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var be *customError.BusinessError
	if !errors.As(err, &be) {
		logger.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		response.InternalServerError(w, "Internal server error", nil)
		return
	}

	status := statusFor(be.Code)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "code", be.Code, "error", err)
	}
	response.ErrorWithCode(w, status, be.Code, be.Message)
}

// clockIn returns a clock reading the current time in loc
func clockIn(loc *time.Location) func() time.Time {
	return func() time.Time {
		return time.Now().In(loc)
	}
}
