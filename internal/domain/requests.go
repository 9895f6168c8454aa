package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Date is a calendar date carried as "2006-01-02" in JSON
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	*d = NewDate(t)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

// DTOs for requests and responses

type CreateLeaseRequest struct {
	CompanyID        uuid.UUID        `json:"company_id" validate:"required"`
	UnitID           uuid.UUID        `json:"unit_id" validate:"required"`
	TenantID         uuid.UUID        `json:"tenant_id" validate:"required"`
	StartDate        Date             `json:"start_date"`
	EndDate          *Date            `json:"end_date"`
	RentAmount       decimal.Decimal  `json:"rent_amount" validate:"required,gt=0"`
	DepositAmount    *decimal.Decimal `json:"deposit_amount"`
	PaymentFrequency string           `json:"payment_frequency" validate:"omitempty,oneof=monthly quarterly semi_annually yearly"`
	PaymentDay       int              `json:"payment_day" validate:"omitempty,min=1,max=28"`
	Notes            *string          `json:"notes"`
	SpecialTerms     *string          `json:"special_terms"`
}

// ToLease builds a draft lease, filling the schema defaults
func (r *CreateLeaseRequest) ToLease(now time.Time) *Lease {
	lease := &Lease{
		ID:               uuid.New(),
		CompanyID:        r.CompanyID,
		UnitID:           r.UnitID,
		TenantID:         r.TenantID,
		StartDate:        r.StartDate.Time,
		RentAmount:       r.RentAmount,
		PaymentFrequency: r.PaymentFrequency,
		PaymentDay:       r.PaymentDay,
		Status:           LeaseStatusDraft,
		Notes:            r.Notes,
		SpecialTerms:     r.SpecialTerms,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if r.EndDate != nil && !r.EndDate.IsZero() {
		end := r.EndDate.Time
		lease.EndDate = &end
	}
	if r.DepositAmount != nil {
		lease.DepositAmount = decimal.NewNullDecimal(*r.DepositAmount)
	}
	if lease.PaymentFrequency == "" {
		lease.PaymentFrequency = FrequencyMonthly
	}
	if lease.PaymentDay == 0 {
		lease.PaymentDay = MinPaymentDay
	}
	return lease
}

type TerminateLeaseRequest struct {
	Reason string `json:"reason" validate:"required"`
	Date   *Date  `json:"date"`
}

type RenewLeaseRequest struct {
	NewEndDate    Date             `json:"new_end_date"`
	NewRentAmount *decimal.Decimal `json:"new_rent_amount"`
}

type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Method      string          `json:"method" validate:"required,oneof=cash bank_transfer check credit_card online other"`
	Reference   *string         `json:"reference"`
	CheckNumber *string         `json:"check_number"`
	Notes       *string         `json:"notes"`
	RecordedBy  *uuid.UUID      `json:"recorded_by"`
}

// ToRecord converts the request to the domain payment record
func (r *RecordPaymentRequest) ToRecord() PaymentRecord {
	rec := PaymentRecord{
		Amount:      r.Amount,
		Method:      r.Method,
		Reference:   r.Reference,
		CheckNumber: r.CheckNumber,
		Notes:       r.Notes,
	}
	if r.RecordedBy != nil {
		rec.RecordedBy = uuid.NullUUID{UUID: *r.RecordedBy, Valid: true}
	}
	return rec
}

type BulkOverdueRequest struct {
	PaymentIDs []uuid.UUID `json:"payment_ids" validate:"required,min=1"`
}

type LeaseSummary struct {
	LeaseID          uuid.UUID       `json:"lease_id"`
	Status           string          `json:"status"`
	IsActive         bool            `json:"is_active"`
	IsExpired        bool            `json:"is_expired"`
	DaysRemaining    *int            `json:"days_remaining"`
	DurationInMonths *int            `json:"duration_in_months"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	PaymentCount     int             `json:"payment_count"`
	OverdueCount     int             `json:"overdue_count"`
}

type ScheduleResponse struct {
	LeaseID   uuid.UUID  `json:"lease_id"`
	Generated bool       `json:"generated"`
	Created   []*Payment `json:"created"`
	Schedule  []*Payment `json:"schedule"`
}

type TerminateLeaseResponse struct {
	Lease *Lease `json:"lease"`
	Unit  *Unit  `json:"unit"`
}

type RenewLeaseResponse struct {
	Previous *Lease `json:"previous"`
	Renewal  *Lease `json:"renewal"`
}

type OverdueResponse struct {
	Marked  bool     `json:"marked"`
	Payment *Payment `json:"payment"`
}

type BulkOverdueResponse struct {
	Requested int `json:"requested"`
	Marked    int `json:"marked"`
}

// UploadDocumentRequest carries the metadata of a multipart upload. The file
// bytes travel separately.
type UploadDocumentRequest struct {
	DocumentableType string        `validate:"required,oneof=lease payment property unit"`
	DocumentableID   uuid.UUID     `validate:"required"`
	Title            string        `validate:"required,max=255"`
	FileName         string        `validate:"required,max=255"`
	DocumentType     string        `validate:"omitempty,oneof=contract receipt invoice id_document proof_of_income maintenance_report inspection_report other"`
	Description      *string       `validate:"omitempty"`
	DocumentDate     *time.Time    `validate:"omitempty"`
	UploadedBy       uuid.NullUUID `validate:"-"`
}

// DocumentView adds the derived accessors to a document for API responses
type DocumentView struct {
	*Document
	FileSizeHuman string `json:"file_size_human"`
	IsImage       bool   `json:"is_image"`
	IsPDF         bool   `json:"is_pdf"`
}

func NewDocumentView(d *Document) DocumentView {
	return DocumentView{
		Document:      d,
		FileSizeHuman: d.FileSizeHuman(),
		IsImage:       d.IsImage(),
		IsPDF:         d.IsPDF(),
	}
}

// PaymentView adds the overdue accessors to a payment for API responses
type PaymentView struct {
	*Payment
	IsOverdue   bool `json:"is_overdue"`
	DaysOverdue *int `json:"days_overdue"`
}

func NewPaymentView(p *Payment, now time.Time) PaymentView {
	return PaymentView{
		Payment:     p,
		IsOverdue:   p.IsOverdue(now),
		DaysOverdue: p.DaysOverdue(now),
	}
}
