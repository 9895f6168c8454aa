package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/segyhp/lease-engine/internal/config"
	"github.com/segyhp/lease-engine/internal/domain"
	"github.com/segyhp/lease-engine/pkg/response"
)

const (
	// multipartMemory is how much of a form is buffered before spilling to disk
	multipartMemory = 8 << 20
	// multipartOverhead leaves room for the metadata fields around the file part
	multipartOverhead = 1 << 20
)

type DocumentHandler struct {
	service        DocumentService
	validator      *validator.Validate
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewDocumentHandler(service DocumentService, cfg *config.Config, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service:        service,
		validator:      newValidator(),
		logger:         logger,
		maxUploadBytes: cfg.Storage.MaxUploadBytes,
	}
}

// UploadDocument handles POST /documents as multipart/form-data with a
// "file" part and the metadata as form fields
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "Upload too large", nil)
			return
		}
		response.BadRequest(w, "Invalid multipart form", err)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.logger.WarnContext(r.Context(), "failed to remove multipart temp files", "error", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file part", err)
		return
	}
	defer file.Close()

	request, err := uploadRequestFromForm(r, header.Filename)
	if err != nil {
		response.BadRequest(w, "Invalid form field", err)
		return
	}
	if err := h.validator.Struct(request); err != nil {
		response.UnprocessableEntity(w, "Validation failed", validationError(err))
		return
	}

	doc, err := h.service.UploadDocument(r.Context(), request, file)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, domain.NewDocumentView(doc))
}

// ListDocuments handles GET /documents?documentable_type=&documentable_id=
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ownerID, err := uuid.Parse(q.Get("documentable_id"))
	if err != nil {
		response.BadRequest(w, "Invalid documentable_id", err)
		return
	}

	docs, err := h.service.ListDocuments(r.Context(), q.Get("documentable_type"), ownerID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	views := make([]domain.DocumentView, 0, len(docs))
	for _, d := range docs {
		views = append(views, domain.NewDocumentView(d))
	}
	response.Success(w, views)
}

// GetDocument handles GET /documents/{documentId}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "documentId")
	if !ok {
		return
	}

	doc, err := h.service.GetDocument(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, domain.NewDocumentView(doc))
}

// DownloadDocument handles GET /documents/{documentId}/download and streams the stored file
func (h *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "documentId")
	if !ok {
		return
	}

	doc, content, err := h.service.OpenDocument(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer content.Close()

	contentType := "application/octet-stream"
	if doc.FileType != nil && *doc.FileType != "" {
		contentType = *doc.FileType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	if doc.FileSize != nil {
		w.Header().Set("Content-Length", strconv.FormatInt(*doc.FileSize, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content); err != nil {
		h.logger.WarnContext(r.Context(), "document download interrupted", "document_id", id, "error", err)
	}
}

// DeleteDocument handles DELETE /documents/{documentId}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "documentId")
	if !ok {
		return
	}

	if err := h.service.DeleteDocument(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func uploadRequestFromForm(r *http.Request, fileName string) (*domain.UploadDocumentRequest, error) {
	request := &domain.UploadDocumentRequest{
		DocumentableType: strings.ToLower(strings.TrimSpace(r.FormValue("documentable_type"))),
		Title:            strings.TrimSpace(r.FormValue("title")),
		FileName:         fileName,
		DocumentType:     strings.TrimSpace(r.FormValue("document_type")),
	}
	if request.Title == "" {
		request.Title = fileName
	}

	ownerID, err := uuid.Parse(r.FormValue("documentable_id"))
	if err != nil {
		return nil, fmt.Errorf("documentable_id: %w", err)
	}
	request.DocumentableID = ownerID

	if description := strings.TrimSpace(r.FormValue("description")); description != "" {
		request.Description = &description
	}

	if raw := r.FormValue("document_date"); raw != "" {
		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, fmt.Errorf("document_date: %w", err)
		}
		request.DocumentDate = &date
	}

	if raw := r.FormValue("uploaded_by"); raw != "" {
		uploader, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("uploaded_by: %w", err)
		}
		request.UploadedBy = uuid.NullUUID{UUID: uploader, Valid: true}
	}

	return request, nil
}
