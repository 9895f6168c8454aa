package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/lease-engine/pkg/errors"
	"github.com/segyhp/lease-engine/pkg/utils"
)

const (
	LeaseStatusDraft      = "draft"
	LeaseStatusActive     = "active"
	LeaseStatusExpired    = "expired"
	LeaseStatusTerminated = "terminated"
	LeaseStatusRenewed    = "renewed"
)

const (
	FrequencyMonthly      = "monthly"
	FrequencyQuarterly    = "quarterly"
	FrequencySemiAnnually = "semi_annually"
	FrequencyYearly       = "yearly"
)

const (
	MinPaymentDay = 1
	MaxPaymentDay = 28
)

// frequencyMonths maps a billing frequency to the number of months between due dates
var frequencyMonths = map[string]int{
	FrequencyMonthly:      1,
	FrequencyQuarterly:    3,
	FrequencySemiAnnually: 6,
	FrequencyYearly:       12,
}

var leaseTransitions = map[string][]string{
	LeaseStatusDraft:      {LeaseStatusActive},
	LeaseStatusActive:     {LeaseStatusTerminated, LeaseStatusExpired, LeaseStatusRenewed},
	LeaseStatusExpired:    {LeaseStatusTerminated, LeaseStatusRenewed},
	LeaseStatusTerminated: {},
	LeaseStatusRenewed:    {},
}

// Lease represents a tenancy agreement between a company's unit and a tenant
type Lease struct {
	ID                uuid.UUID           `json:"id" db:"id"`
	CompanyID         uuid.UUID           `json:"company_id" db:"company_id"`
	UnitID            uuid.UUID           `json:"unit_id" db:"unit_id"`
	TenantID          uuid.UUID           `json:"tenant_id" db:"tenant_id"`
	StartDate         time.Time           `json:"start_date" db:"start_date"`
	EndDate           *time.Time          `json:"end_date" db:"end_date"` // nil = open-ended
	RentAmount        decimal.Decimal     `json:"rent_amount" db:"rent_amount"`
	DepositAmount     decimal.NullDecimal `json:"deposit_amount" db:"deposit_amount"`
	PaymentFrequency  string              `json:"payment_frequency" db:"payment_frequency"`
	PaymentDay        int                 `json:"payment_day" db:"payment_day"`
	Status            string              `json:"status" db:"status"`
	TerminationDate   *time.Time          `json:"termination_date,omitempty" db:"termination_date"`
	TerminationReason *string             `json:"termination_reason,omitempty" db:"termination_reason"`
	Notes             *string             `json:"notes,omitempty" db:"notes"`
	SpecialTerms      *string             `json:"special_terms,omitempty" db:"special_terms"`
	CreatedAt         time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" db:"updated_at"`
	DeletedAt         *time.Time          `json:"-" db:"deleted_at"`
}

// Validate checks the structural invariants of a lease
func (l *Lease) Validate() error {
	if l.UnitID == uuid.Nil || l.CompanyID == uuid.Nil || l.TenantID == uuid.Nil {
		return customError.WrapInvalidLease("company, unit and tenant are required")
	}
	if l.StartDate.IsZero() {
		return customError.WrapInvalidLease("start date is required")
	}
	if l.EndDate != nil && utils.DateOnly(*l.EndDate).Before(utils.DateOnly(l.StartDate)) {
		return customError.WrapInvalidLease("end date must be on or after start date")
	}
	if !l.RentAmount.IsPositive() {
		return customError.WrapInvalidLease("rent amount must be greater than zero")
	}
	if !ValidMoney(l.RentAmount) {
		return customError.WrapInvalidLease("rent amount must have at most 2 decimal places and be below 100000000")
	}
	if l.DepositAmount.Valid && l.DepositAmount.Decimal.IsNegative() {
		return customError.WrapInvalidLease("deposit amount cannot be negative")
	}
	if l.DepositAmount.Valid && !ValidMoney(l.DepositAmount.Decimal) {
		return customError.WrapInvalidLease("deposit amount must have at most 2 decimal places and be below 100000000")
	}
	if l.PaymentDay < MinPaymentDay || l.PaymentDay > MaxPaymentDay {
		return customError.WrapInvalidLease("payment day must be between 1 and 28")
	}
	if _, ok := frequencyMonths[l.PaymentFrequency]; !ok {
		return customError.WrapInvalidFrequency(l.PaymentFrequency)
	}
	return nil
}

func (l *Lease) IsActive() bool {
	return l.Status == LeaseStatusActive
}

// IsExpired reports whether the lease has an end date before the day of now.
// A lease is still in force on its last day.
func (l *Lease) IsExpired(now time.Time) bool {
	return l.EndDate != nil && utils.IsDateOverdue(*l.EndDate, now)
}

// DaysRemaining returns the days left until the end date, or nil when the
// lease is open-ended or already expired.
func (l *Lease) DaysRemaining(now time.Time) *int {
	if l.EndDate == nil || l.IsExpired(now) {
		return nil
	}
	days := utils.DaysBetween(now, *l.EndDate)
	return &days
}

// DurationInMonths returns the whole months between start and end, nil when open-ended
func (l *Lease) DurationInMonths() *int {
	if l.EndDate == nil {
		return nil
	}
	months := utils.MonthsBetween(l.StartDate, *l.EndDate)
	return &months
}

// Activate moves a draft lease to active
func (l *Lease) Activate(now time.Time) error {
	if err := validateTransition("lease", leaseTransitions, l.Status, LeaseStatusActive); err != nil {
		return err
	}
	l.Status = LeaseStatusActive
	l.UpdatedAt = now
	return nil
}

// Terminate ends the lease on the given date. Releasing the unit is the
// caller's job and must happen in the same transaction.
func (l *Lease) Terminate(reason string, date time.Time, now time.Time) error {
	if err := validateTransition("lease", leaseTransitions, l.Status, LeaseStatusTerminated); err != nil {
		return err
	}
	d := utils.DateOnly(date)
	l.Status = LeaseStatusTerminated
	l.TerminationDate = &d
	l.TerminationReason = &reason
	l.UpdatedAt = now
	return nil
}

// Renew marks the lease renewed and returns its successor in draft. The
// successor starts the day after the current end date and copies every other
// term unless newRent is given.
func (l *Lease) Renew(newEndDate time.Time, newRent *decimal.Decimal, now time.Time) (*Lease, error) {
	if l.EndDate == nil {
		return nil, customError.WrapMissingEndDate(l.ID.String())
	}
	if err := validateTransition("lease", leaseTransitions, l.Status, LeaseStatusRenewed); err != nil {
		return nil, err
	}

	next := *l
	next.ID = uuid.New()
	next.StartDate = utils.DateOnly(*l.EndDate).AddDate(0, 0, 1)
	end := utils.DateOnly(newEndDate)
	next.EndDate = &end
	if newRent != nil {
		next.RentAmount = *newRent
	}
	next.Status = LeaseStatusDraft
	next.TerminationDate = nil
	next.TerminationReason = nil
	next.Notes = cloneString(l.Notes)
	next.SpecialTerms = cloneString(l.SpecialTerms)
	next.CreatedAt = now
	next.UpdatedAt = now
	next.DeletedAt = nil

	if err := next.Validate(); err != nil {
		return nil, err
	}

	l.Status = LeaseStatusRenewed
	l.UpdatedAt = now
	return &next, nil
}

// ScheduleDueDates walks the lease term at its billing frequency and returns
// one due date per period. Open-ended leases are scheduled for defaultTermMonths.
func (l *Lease) ScheduleDueDates(defaultTermMonths int) ([]time.Time, error) {
	step, ok := frequencyMonths[l.PaymentFrequency]
	if !ok {
		return nil, customError.WrapInvalidFrequency(l.PaymentFrequency)
	}

	start := utils.DateOnly(l.StartDate)
	end := utils.AddMonthsClamped(start, defaultTermMonths)
	if l.EndDate != nil {
		end = utils.DateOnly(*l.EndDate)
	}

	var dueDates []time.Time
	// The cursor is always derived from start so short months don't drift it.
	for k := 0; ; k++ {
		cursor := utils.AddMonthsClamped(start, k*step)
		if cursor.After(end) {
			break
		}
		dueDates = append(dueDates, utils.WithDay(cursor, l.PaymentDay))
	}
	return dueDates, nil
}

// PlanPaymentSchedule returns the pending payments still missing from the
// lease's schedule. Due dates already covered by existing are skipped, so
// calling it again after persisting the result yields nothing.
func (l *Lease) PlanPaymentSchedule(existing []*Payment, defaultTermMonths int, now time.Time) ([]*Payment, error) {
	dueDates, err := l.ScheduleDueDates(defaultTermMonths)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		taken[p.DueDate.Format(time.DateOnly)] = struct{}{}
	}

	planned := make([]*Payment, 0, len(dueDates))
	for _, due := range dueDates {
		key := due.Format(time.DateOnly)
		if _, ok := taken[key]; ok {
			continue
		}
		taken[key] = struct{}{}
		planned = append(planned, NewScheduledPayment(l, due, now))
	}
	return planned, nil
}

// Summarize computes the derived totals of a lease from its payments
func (l *Lease) Summarize(payments []*Payment, now time.Time) *LeaseSummary {
	summary := &LeaseSummary{
		LeaseID:          l.ID,
		Status:           l.Status,
		IsActive:         l.IsActive(),
		IsExpired:        l.IsExpired(now),
		DaysRemaining:    l.DaysRemaining(now),
		DurationInMonths: l.DurationInMonths(),
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
		PaymentCount:     len(payments),
	}

	for _, p := range payments {
		switch {
		case p.IsPaid():
			summary.TotalPaid = summary.TotalPaid.Add(p.PaidAmount)
		case p.Status == PaymentStatusPending, p.Status == PaymentStatusOverdue, p.Status == PaymentStatusPartial:
			summary.TotalOutstanding = summary.TotalOutstanding.Add(p.RemainingAmount)
		}
		if p.IsOverdue(now) {
			summary.OverdueCount++
		}
	}
	return summary
}

// IsValidFrequency reports whether f is a known billing frequency
func IsValidFrequency(f string) bool {
	_, ok := frequencyMonths[f]
	return ok
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
