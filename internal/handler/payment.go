package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/segyhp/lease-engine/internal/config"
	"github.com/segyhp/lease-engine/internal/domain"
	"github.com/segyhp/lease-engine/pkg/response"
)

type PaymentHandler struct {
	service   PaymentService
	validator *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

func NewPaymentHandler(service PaymentService, cfg *config.Config, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:   service,
		validator: newValidator(),
		logger:    logger,
		now:       clockIn(cfg.GetSchedulerLocation()),
	}
}

// GetPayment handles GET /payments/{paymentId}
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "paymentId")
	if !ok {
		return
	}

	payment, err := h.service.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, domain.NewPaymentView(payment, h.now()))
}

// RecordPayment handles POST /payments/{paymentId}/record
func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "paymentId")
	if !ok {
		return
	}

	var request domain.RecordPaymentRequest
	if !decodeJSON(w, r, h.validator, &request) {
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), id, request.ToRecord())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, domain.NewPaymentView(payment, h.now()))
}

// MarkAsOverdue handles POST /payments/{paymentId}/overdue
func (h *PaymentHandler) MarkAsOverdue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "paymentId")
	if !ok {
		return
	}

	result, err := h.service.MarkAsOverdue(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, result)
}

// BulkMarkOverdue handles POST /payments/overdue
func (h *PaymentHandler) BulkMarkOverdue(w http.ResponseWriter, r *http.Request) {
	var request domain.BulkOverdueRequest
	if !decodeJSON(w, r, h.validator, &request) {
		return
	}

	result, err := h.service.BulkMarkOverdue(r.Context(), request.PaymentIDs)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, result)
}

// CancelPayment handles POST /payments/{paymentId}/cancel
func (h *PaymentHandler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "paymentId")
	if !ok {
		return
	}

	payment, err := h.service.CancelPayment(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, domain.NewPaymentView(payment, h.now()))
}
