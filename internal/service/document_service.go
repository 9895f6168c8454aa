package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/segyhp/lease-engine/internal/config"
	"github.com/segyhp/lease-engine/internal/domain"
	"github.com/segyhp/lease-engine/internal/repository"
	"github.com/segyhp/lease-engine/internal/storage"
	customError "github.com/segyhp/lease-engine/pkg/errors"
)

// sniffLen is how much of an upload is read to detect its type
const sniffLen = 3072

const maxExtensionLen = 10

type DocumentService struct {
	store  repository.Store
	blobs  storage.BlobStore
	config *config.Config
	logger *slog.Logger
	now    func() time.Time
}

func NewDocumentService(
	store repository.Store,
	blobs storage.BlobStore,
	config *config.Config,
	logger *slog.Logger,
) *DocumentService {
	return &DocumentService{
		store:  store,
		blobs:  blobs,
		config: config,
		logger: logger,
		now:    clockIn(config.GetSchedulerLocation()),
	}
}

// UploadDocument stores content and records its metadata against the owner.
// Type, size and extension are captured here and never recomputed.
func (s *DocumentService) UploadDocument(ctx context.Context, request *domain.UploadDocumentRequest, content io.Reader) (*domain.Document, error) {
	owner, err := domain.NewDocumentable(request.DocumentableType, request.DocumentableID)
	if err != nil {
		return nil, err
	}

	documentType, ok := domain.NormalizeDocumentType(request.DocumentType)
	if !ok {
		return nil, customError.WrapInvalidDocument(fmt.Sprintf("unknown document type %q", request.DocumentType))
	}

	exists, err := s.store.Documents().OwnerExists(ctx, owner)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !exists {
		return nil, customError.WrapDocumentableNotFound(owner.Type, owner.ID.String())
	}

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(content, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, customError.WrapStorageError(err)
	}
	header = header[:n]
	mime := mimetype.Detect(header)

	now := s.now()
	doc := &domain.Document{
		ID:               uuid.New(),
		DocumentableType: owner.Type,
		DocumentableID:   owner.ID,
		Title:            request.Title,
		FileName:         filepath.Base(request.FileName),
		DocumentType:     documentType,
		Description:      request.Description,
		UploadedBy:       request.UploadedBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if request.DocumentDate != nil {
		d := calendarDate(*request.DocumentDate)
		doc.DocumentDate = &d
	}

	fileType := mime.String()
	doc.FileType = &fileType
	if ext := fileExtension(request.FileName, mime); ext != "" {
		doc.Extension = &ext
	}

	name := doc.ID.String()
	if doc.Extension != nil {
		name += "." + *doc.Extension
	}
	doc.FilePath = fmt.Sprintf("%s/%s/%s", owner.Type, owner.ID, name)

	limit := s.config.Storage.MaxUploadBytes
	body := &io.LimitedReader{R: io.MultiReader(bytes.NewReader(header), content), N: limit + 1}
	size, err := s.blobs.Save(doc.FilePath, body)
	if err != nil {
		return nil, customError.WrapStorageError(err)
	}
	if size > limit {
		s.removeBlob(ctx, doc.FilePath)
		return nil, customError.WrapDocumentTooLarge(size, limit)
	}
	doc.FileSize = &size

	if err := s.store.Documents().Create(ctx, doc); err != nil {
		s.removeBlob(ctx, doc.FilePath)
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "document uploaded",
		"document_id", doc.ID,
		"documentable_type", owner.Type,
		"documentable_id", owner.ID,
		"file_type", fileType,
		"file_size", size,
	)
	return doc, nil
}

func (s *DocumentService) GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	doc, err := s.store.Documents().GetByID(ctx, id)
	if err != nil {
		return nil, documentLookupError(id, err)
	}
	return doc, nil
}

// ListDocuments returns the documents attached to one owner, newest first
func (s *DocumentService) ListDocuments(ctx context.Context, kind string, ownerID uuid.UUID) ([]*domain.Document, error) {
	owner, err := domain.NewDocumentable(kind, ownerID)
	if err != nil {
		return nil, err
	}

	docs, err := s.store.Documents().ListByOwner(ctx, owner)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return docs, nil
}

// OpenDocument returns the document and a reader over its stored bytes.
// The caller closes the reader.
func (s *DocumentService) OpenDocument(ctx context.Context, id uuid.UUID) (*domain.Document, io.ReadCloser, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Open(doc.FilePath)
	if errors.Is(err, storage.ErrFileNotFound) {
		return nil, nil, customError.WrapDocumentNotFound(id.String())
	}
	if err != nil {
		return nil, nil, customError.WrapStorageError(err)
	}
	return doc, rc, nil
}

// DeleteDocument soft deletes the document and removes its stored file
func (s *DocumentService) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	// The row is only removed once its file is gone.
	if err := s.blobs.Delete(doc.FilePath); err != nil {
		s.logger.ErrorContext(ctx, "failed to remove document file", "document_id", id, "path", doc.FilePath, "error", err)
		return customError.WrapStorageError(err)
	}

	if err := s.store.Documents().SoftDelete(ctx, id, s.now()); err != nil {
		return documentLookupError(id, err)
	}

	owner := doc.Owner()
	s.logger.InfoContext(ctx, "document deleted", "document_id", id, "owner_type", owner.Type, "owner_id", owner.ID)
	return nil
}

func (s *DocumentService) removeBlob(ctx context.Context, path string) {
	if err := s.blobs.Delete(path); err != nil {
		s.logger.WarnContext(ctx, "failed to clean up stored file", "path", path, "error", err)
	}
}

// fileExtension prefers the client's extension and falls back to the detected type
func fileExtension(fileName string, mime *mimetype.MIME) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext == "" {
		ext = strings.TrimPrefix(mime.Extension(), ".")
	}
	if len(ext) > maxExtensionLen {
		return ""
	}
	return ext
}
