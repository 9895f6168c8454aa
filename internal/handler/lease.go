package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/segyhp/lease-engine/internal/config"
	"github.com/segyhp/lease-engine/internal/domain"
	"github.com/segyhp/lease-engine/internal/repository"
	"github.com/segyhp/lease-engine/pkg/response"
)

const maxListLimit = 200

type LeaseHandler struct {
	service          LeaseService
	validator        *validator.Validate
	logger           *slog.Logger
	expiringSoonDays int
	now              func() time.Time
}

func NewLeaseHandler(service LeaseService, cfg *config.Config, logger *slog.Logger) *LeaseHandler {
	return &LeaseHandler{
		service:          service,
		validator:        newValidator(),
		logger:           logger,
		expiringSoonDays: cfg.Business.ExpiringSoonDays,
		now:              clockIn(cfg.GetSchedulerLocation()),
	}
}

// CreateLease handles POST /leases
func (h *LeaseHandler) CreateLease(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLeaseRequest
	if !decodeJSON(w, r, h.validator, &request) {
		return
	}
	lease, err := h.service.CreateLease(r.Context(), &request)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, lease)
}

// ListLeases handles GET /leases
func (h *LeaseHandler) ListLeases(w http.ResponseWriter, r *http.Request) {
	filter, err := parseLeaseFilter(r.URL.Query(), h.expiringSoonDays)
	if err != nil {
		response.BadRequest(w, "Invalid query", err)
		return
	}

	leases, err := h.service.ListLeases(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, leases)
}

// GetLease handles GET /leases/{leaseId}
func (h *LeaseHandler) GetLease(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "leaseId")
	if !ok {
		return
	}

	lease, err := h.service.GetLease(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, lease)
}

// DeleteLease handles DELETE /leases/{leaseId}
func (h *LeaseHandler) DeleteLease(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "leaseId")
	if !ok {
		return
	}

	if err := h.service.DeleteLease(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ActivateLease handles POST /leases/{leaseId}/activate
func (h *LeaseHandler) ActivateLease(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "leaseId")
	if !ok {
		return
	}

	lease, err := h.service.ActivateLease(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, lease)
}

// TerminateLease handles POST /leases/{leaseId}/terminate
func (h *LeaseHandler) TerminateLease(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "leaseId")
	if !ok {
		return
	}

	var request domain.TerminateLeaseRequest
	if !decodeJSON(w, r, h.validator, &request) {
		return
	}

	var date *time.Time
	if request.Date != nil && !request.Date.IsZero() {
		date = &request.Date.Time
	}

	result, err := h.service.TerminateLease(r.Context(), id, request.Reason, date)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, result)
}

// RenewLease handles POST /leases/{leaseId}/renew
func (h *LeaseHandler) RenewLease(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "leaseId")
	if !ok {
		return
	}

	var request domain.RenewLeaseRequest
	if !decodeJSON(w, r, h.validator, &request) {
		return
	}
	if request.NewEndDate.IsZero() {
		response.UnprocessableEntity(w, "Validation failed", fmt.Errorf("new_end_date is required"))
		return
	}
	if request.NewRentAmount != nil && !request.NewRentAmount.IsPositive() {
		response.UnprocessableEntity(w, "Validation failed", fmt.Errorf("new_rent_amount must be greater than 0"))
		return
	}

	result, err := h.service.RenewLease(r.Context(), id, request.NewEndDate.Time, request.NewRentAmount)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, result)
}

// GenerateSchedule handles POST /leases/{leaseId}/schedule
func (h *LeaseHandler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "leaseId")
	if !ok {
		return
	}

	result, err := h.service.GenerateSchedule(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, result)
}

// ListPayments handles GET /leases/{leaseId}/payments
func (h *LeaseHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "leaseId")
	if !ok {
		return
	}

	payments, err := h.service.ListPayments(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	now := h.now()
	views := make([]domain.PaymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, domain.NewPaymentView(p, now))
	}
	response.Success(w, views)
}

// GetSummary handles GET /leases/{leaseId}/summary
func (h *LeaseHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "leaseId")
	if !ok {
		return
	}

	summary, err := h.service.GetSummary(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, summary)
}

// parseLeaseFilter reads list filters from the query string.
// expiring_soon accepts "true" for the configured window or a day count.
func parseLeaseFilter(q url.Values, expiringSoonDays int) (repository.LeaseFilter, error) {
	var filter repository.LeaseFilter

	if status := q.Get("status"); status != "" {
		switch status {
		case domain.LeaseStatusDraft, domain.LeaseStatusActive, domain.LeaseStatusExpired,
			domain.LeaseStatusTerminated, domain.LeaseStatusRenewed:
			filter.Status = status
		default:
			return filter, fmt.Errorf("unknown status %q", status)
		}
	}

	for param, dest := range map[string]**uuid.UUID{
		"company_id": &filter.CompanyID,
		"unit_id":    &filter.UnitID,
		"tenant_id":  &filter.TenantID,
	} {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid %s: %w", param, err)
		}
		*dest = &id
	}

	if raw := q.Get("expiring_soon"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil {
			if days <= 0 {
				return filter, fmt.Errorf("expiring_soon must be a positive day count")
			}
			filter.ExpiringWithinDays = days
		} else {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return filter, fmt.Errorf("expiring_soon must be a boolean or a day count")
			}
			if b {
				filter.ExpiringWithinDays = expiringSoonDays
			}
		}
	}

	if raw := q.Get("expired"); raw != "" {
		expired, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid expired: %w", err)
		}
		filter.ExpiredOnly = expired
	}

	var err error
	if filter.Limit, err = intParam(q, "limit", 0, maxListLimit); err != nil {
		return filter, err
	}
	if filter.Offset, err = intParam(q, "offset", 0, -1); err != nil {
		return filter, err
	}

	return filter, nil
}

// intParam parses a non-negative integer. max < 0 means unbounded.
func intParam(q url.Values, name string, def, max int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	if max >= 0 && n > max {
		n = max
	}
	return n, nil
}
