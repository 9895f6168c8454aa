package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/lease-engine/pkg/errors"
	"github.com/segyhp/lease-engine/pkg/utils"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusOverdue   = "overdue"
	PaymentStatusPartial   = "partial"
	PaymentStatusCancelled = "cancelled"
)

const (
	PaymentMethodCash         = "cash"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCheck        = "check"
	PaymentMethodCreditCard   = "credit_card"
	PaymentMethodOnline       = "online"
	PaymentMethodOther        = "other"
)

// Money columns are NUMERIC(10,2): two decimal places, amounts below 10^8
const MoneyScale = 2

var maxMoney = decimal.New(1, 8)

// ValidMoney reports whether d can be stored in a money column without rounding or overflow
func ValidMoney(d decimal.Decimal) bool {
	return d.Abs().LessThan(maxMoney) && d.Equal(d.Truncate(MoneyScale))
}

// OverpaymentPolicy decides what happens to a payment larger than the remaining balance
type OverpaymentPolicy string

const (
	// OverpaymentReject refuses the payment.
	OverpaymentReject OverpaymentPolicy = "reject"
	// OverpaymentAbsorb accepts it, marks the payment paid and drops the excess.
	OverpaymentAbsorb OverpaymentPolicy = "absorb"
)

var paymentMethods = map[string]struct{}{
	PaymentMethodCash:         {},
	PaymentMethodBankTransfer: {},
	PaymentMethodCheck:        {},
	PaymentMethodCreditCard:   {},
	PaymentMethodOnline:       {},
	PaymentMethodOther:        {},
}

var paymentTransitions = map[string][]string{
	PaymentStatusPending:   {PaymentStatusPartial, PaymentStatusPaid, PaymentStatusOverdue, PaymentStatusCancelled},
	PaymentStatusPartial:   {PaymentStatusPartial, PaymentStatusPaid},
	PaymentStatusOverdue:   {PaymentStatusPartial, PaymentStatusPaid},
	PaymentStatusPaid:      {},
	PaymentStatusCancelled: {},
}

// Payment represents one billing-period obligation of a lease
type Payment struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	LeaseID         uuid.UUID       `json:"lease_id" db:"lease_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	DueDate         time.Time       `json:"due_date" db:"due_date"`
	PaymentDate     *time.Time      `json:"payment_date" db:"payment_date"` // nil = unpaid
	PaymentMethod   *string         `json:"payment_method" db:"payment_method"`
	ReferenceNumber *string         `json:"reference_number,omitempty" db:"reference_number"`
	CheckNumber     *string         `json:"check_number,omitempty" db:"check_number"`
	Status          string          `json:"status" db:"status"` // pending, paid, overdue, partial, cancelled
	PaidAmount      decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount" db:"remaining_amount"`
	Notes           *string         `json:"notes,omitempty" db:"notes"`
	RecordedBy      uuid.NullUUID   `json:"recorded_by" db:"recorded_by"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time      `json:"-" db:"deleted_at"`
}

// PaymentRecord is one amount applied against a payment
type PaymentRecord struct {
	Amount      decimal.Decimal
	Method      string
	Reference   *string
	CheckNumber *string
	Notes       *string
	RecordedBy  uuid.NullUUID
}

// NewScheduledPayment creates the pending payment for one period of a lease
func NewScheduledPayment(lease *Lease, dueDate time.Time, now time.Time) *Payment {
	return &Payment{
		ID:              uuid.New(),
		LeaseID:         lease.ID,
		Amount:          lease.RentAmount,
		DueDate:         utils.DateOnly(dueDate),
		Status:          PaymentStatusPending,
		PaidAmount:      decimal.Zero,
		RemainingAmount: lease.RentAmount,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}

// IsOverdue reports whether the payment is flagged overdue or is still pending past its due date
func (p *Payment) IsOverdue(now time.Time) bool {
	return p.Status == PaymentStatusOverdue ||
		(p.Status == PaymentStatusPending && utils.IsDateOverdue(p.DueDate, now))
}

// DaysOverdue returns how many days have passed since the due date, nil when not overdue
func (p *Payment) DaysOverdue(now time.Time) *int {
	if !p.IsOverdue(now) {
		return nil
	}
	days := utils.DaysBetween(p.DueDate, now)
	return &days
}

// Outstanding is what is still owed, never below zero
func (p *Payment) Outstanding() decimal.Decimal {
	rest := p.Amount.Sub(p.PaidAmount)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// RecordPayment applies an amount to the payment. The method, reference and
// payment date are updated even when the payment stays partial.
func (p *Payment) RecordPayment(rec PaymentRecord, policy OverpaymentPolicy, now time.Time) error {
	if !rec.Amount.IsPositive() || !ValidMoney(rec.Amount) {
		return customError.WrapInvalidPaymentAmount(rec.Amount.String())
	}
	if _, ok := paymentMethods[rec.Method]; !ok {
		return customError.WrapInvalidPaymentMethod(rec.Method)
	}

	paid := p.PaidAmount.Add(rec.Amount)
	target := PaymentStatusPartial
	if paid.GreaterThanOrEqual(p.Amount) {
		target = PaymentStatusPaid
	}
	if err := validateTransition("payment", paymentTransitions, p.Status, target); err != nil {
		return err
	}
	if policy != OverpaymentAbsorb && paid.GreaterThan(p.Amount) {
		return customError.WrapOverpayment(rec.Amount.StringFixed(2), p.Outstanding().StringFixed(2))
	}

	today := utils.DateOnly(now)
	method := rec.Method
	p.PaidAmount = paid
	p.RemainingAmount = p.Amount.Sub(paid)
	p.PaymentMethod = &method
	p.ReferenceNumber = rec.Reference
	p.PaymentDate = &today
	if rec.CheckNumber != nil {
		p.CheckNumber = rec.CheckNumber
	}
	if rec.Notes != nil {
		p.Notes = rec.Notes
	}
	if rec.RecordedBy.Valid {
		p.RecordedBy = rec.RecordedBy
	}

	p.Status = target
	if target == PaymentStatusPaid {
		p.RemainingAmount = decimal.Zero
	}
	p.UpdatedAt = now
	return nil
}

// MarkAsOverdue flags a pending payment whose due date has passed.
// It returns false and changes nothing in any other case.
func (p *Payment) MarkAsOverdue(now time.Time) bool {
	if p.Status != PaymentStatusPending || !utils.IsDateOverdue(p.DueDate, now) {
		return false
	}
	p.Status = PaymentStatusOverdue
	p.UpdatedAt = now
	return true
}

// Cancel voids a pending payment
func (p *Payment) Cancel(now time.Time) error {
	if err := validateTransition("payment", paymentTransitions, p.Status, PaymentStatusCancelled); err != nil {
		return err
	}
	p.Status = PaymentStatusCancelled
	p.UpdatedAt = now
	return nil
}

// IsValidPaymentMethod reports whether m is an accepted payment method
func IsValidPaymentMethod(m string) bool {
	_, ok := paymentMethods[m]
	return ok
}
