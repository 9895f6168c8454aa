package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/segyhp/lease-engine/pkg/response"
)

// NewRouter wires every HTTP route
func NewRouter(
	leases *LeaseHandler,
	payments *PaymentHandler,
	documents *DocumentHandler,
	health *HealthHandler,
	logger *slog.Logger,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger), response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/leases", leases.CreateLease).Methods(http.MethodPost)
	api.HandleFunc("/leases", leases.ListLeases).Methods(http.MethodGet)
	api.HandleFunc("/leases/{leaseId}", leases.GetLease).Methods(http.MethodGet)
	api.HandleFunc("/leases/{leaseId}", leases.DeleteLease).Methods(http.MethodDelete)
	api.HandleFunc("/leases/{leaseId}/activate", leases.ActivateLease).Methods(http.MethodPost)
	api.HandleFunc("/leases/{leaseId}/terminate", leases.TerminateLease).Methods(http.MethodPost)
	api.HandleFunc("/leases/{leaseId}/renew", leases.RenewLease).Methods(http.MethodPost)
	api.HandleFunc("/leases/{leaseId}/schedule", leases.GenerateSchedule).Methods(http.MethodPost)
	api.HandleFunc("/leases/{leaseId}/payments", leases.ListPayments).Methods(http.MethodGet)
	api.HandleFunc("/leases/{leaseId}/summary", leases.GetSummary).Methods(http.MethodGet)

	api.HandleFunc("/payments/overdue", payments.BulkMarkOverdue).Methods(http.MethodPost)
	api.HandleFunc("/payments/{paymentId}", payments.GetPayment).Methods(http.MethodGet)
	api.HandleFunc("/payments/{paymentId}/record", payments.RecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{paymentId}/overdue", payments.MarkAsOverdue).Methods(http.MethodPost)
	api.HandleFunc("/payments/{paymentId}/cancel", payments.CancelPayment).Methods(http.MethodPost)

	api.HandleFunc("/documents", documents.UploadDocument).Methods(http.MethodPost)
	api.HandleFunc("/documents", documents.ListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents/{documentId}", documents.GetDocument).Methods(http.MethodGet)
	api.HandleFunc("/documents/{documentId}", documents.DeleteDocument).Methods(http.MethodDelete)
	api.HandleFunc("/documents/{documentId}/download", documents.DownloadDocument).Methods(http.MethodGet)

	return router
}
