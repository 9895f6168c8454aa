package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/lease-engine/internal/domain"
	"github.com/segyhp/lease-engine/internal/mocks"
	"github.com/segyhp/lease-engine/internal/storage"
	customError "github.com/segyhp/lease-engine/pkg/errors"
)

const samplePDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n"

func newDocumentService(t *testing.T, store *mocks.MockStore) (*DocumentService, *storage.FileStore) {
	t.Helper()
	blobs, err := storage.NewFileStore(afero.NewMemMapFs(), "/documents")
	require.NoError(t, err)

	svc := NewDocumentService(store, blobs, testConfig(), testLogger())
	svc.now = fixedClock(day(2024, 5, 1))
	return svc, blobs
}

func uploadRequest(kind string, ownerID uuid.UUID) *domain.UploadDocumentRequest {
	return &domain.UploadDocumentRequest{
		DocumentableType: kind,
		DocumentableID:   ownerID,
		Title:            "Signed lease",
		FileName:         "Lease Agreement.PDF",
		DocumentType:     domain.DocumentTypeContract,
	}
}

func TestUploadDocument_CapturesMetadata(t *testing.T) {
	store := mocks.NewMockStore()
	svc, blobs := newDocumentService(t, store)
	leaseID := uuid.New()
	owner := domain.Documentable{Type: domain.DocumentableLease, ID: leaseID}

	store.DocumentRepo.On("OwnerExists", mock.Anything, owner).Return(true, nil)
	store.DocumentRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	doc, err := svc.UploadDocument(context.Background(), uploadRequest("lease", leaseID), strings.NewReader(samplePDF))

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentableLease, doc.DocumentableType)
	assert.Equal(t, leaseID, doc.DocumentableID)
	assert.Equal(t, "Lease Agreement.PDF", doc.FileName)
	assert.Equal(t, "application/pdf", *doc.FileType)
	assert.Equal(t, "pdf", *doc.Extension)
	assert.Equal(t, int64(len(samplePDF)), *doc.FileSize)
	assert.Equal(t, domain.DocumentTypeContract, doc.DocumentType)
	assert.True(t, doc.IsPDF())
	assert.True(t, strings.HasPrefix(doc.FilePath, "lease/"+leaseID.String()+"/"))

	exists, err := blobs.Exists(doc.FilePath)
	require.NoError(t, err)
	assert.True(t, exists)
	store.AssertExpectations(t)
}

func TestUploadDocument_DefaultsTypeAndSniffsExtension(t *testing.T) {
	store := mocks.NewMockStore()
	svc, _ := newDocumentService(t, store)
	unitID := uuid.New()

	store.DocumentRepo.On("OwnerExists", mock.Anything, mock.Anything).Return(true, nil)
	store.DocumentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	request := uploadRequest("unit", unitID)
	request.FileName = "scan"
	request.DocumentType = ""

	doc, err := svc.UploadDocument(context.Background(), request, strings.NewReader(samplePDF))

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeOther, doc.DocumentType)
	assert.Equal(t, "pdf", *doc.Extension)
}

func TestUploadDocument_TooLarge(t *testing.T) {
	store := mocks.NewMockStore()
	fs := afero.NewMemMapFs()
	blobs, err := storage.NewFileStore(fs, "/documents")
	require.NoError(t, err)
	svc := NewDocumentService(store, blobs, testConfig(), testLogger())
	svc.config.Storage.MaxUploadBytes = 16

	store.DocumentRepo.On("OwnerExists", mock.Anything, mock.Anything).Return(true, nil)

	_, err = svc.UploadDocument(context.Background(), uploadRequest("lease", uuid.New()), strings.NewReader(samplePDF))

	assert.ErrorIs(t, err, customError.ErrDocumentTooLarge)
	store.DocumentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	// nothing is left behind in storage
	var files int
	require.NoError(t, afero.Walk(fs, "/documents", func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files++
		}
		return err
	}))
	assert.Zero(t, files)
}

func TestUploadDocument_OwnerChecks(t *testing.T) {
	t.Run("unknown kind", func(t *testing.T) {
		store := mocks.NewMockStore()
		svc, _ := newDocumentService(t, store)

		_, err := svc.UploadDocument(context.Background(), uploadRequest("tenant", uuid.New()), strings.NewReader(samplePDF))

		assert.ErrorIs(t, err, customError.ErrInvalidDocumentableKind)
	})

	t.Run("missing owner", func(t *testing.T) {
		store := mocks.NewMockStore()
		svc, _ := newDocumentService(t, store)
		store.DocumentRepo.On("OwnerExists", mock.Anything, mock.Anything).Return(false, nil)

		_, err := svc.UploadDocument(context.Background(), uploadRequest("payment", uuid.New()), strings.NewReader(samplePDF))

		assert.ErrorIs(t, err, customError.ErrDocumentableNotFound)
	})

	t.Run("unknown document type", func(t *testing.T) {
		store := mocks.NewMockStore()
		svc, _ := newDocumentService(t, store)
		request := uploadRequest("lease", uuid.New())
		request.DocumentType = "selfie"

		_, err := svc.UploadDocument(context.Background(), request, strings.NewReader(samplePDF))

		assert.ErrorIs(t, err, customError.ErrInvalidDocument)
	})
}

func TestUploadDocument_DatabaseFailureRemovesFile(t *testing.T) {
	store := mocks.NewMockStore()
	svc, blobs := newDocumentService(t, store)

	var saved *domain.Document
	store.DocumentRepo.On("OwnerExists", mock.Anything, mock.Anything).Return(true, nil)
	store.DocumentRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Document) }).
		Return(errors.New("insert failed"))

	_, err := svc.UploadDocument(context.Background(), uploadRequest("lease", uuid.New()), strings.NewReader(samplePDF))

	assert.Equal(t, customError.ErrCodeDatabaseError, customError.Code(err))
	require.NotNil(t, saved)
	exists, err := blobs.Exists(saved.FilePath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestOpenDocument(t *testing.T) {
	store := mocks.NewMockStore()
	svc, blobs := newDocumentService(t, store)

	doc := &domain.Document{ID: uuid.New(), FilePath: "lease/abc/file.pdf"}
	_, err := blobs.Save(doc.FilePath, strings.NewReader(samplePDF))
	require.NoError(t, err)
	store.DocumentRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)

	got, rc, err := svc.OpenDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, samplePDF, string(body))
}

func TestDeleteDocument_RemovesStoredFile(t *testing.T) {
	store := mocks.NewMockStore()
	svc, blobs := newDocumentService(t, store)

	doc := &domain.Document{ID: uuid.New(), FilePath: "payment/xyz/receipt.png"}
	_, err := blobs.Save(doc.FilePath, strings.NewReader("png bytes"))
	require.NoError(t, err)

	store.DocumentRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	store.DocumentRepo.On("SoftDelete", mock.Anything, doc.ID, day(2024, 5, 1)).Return(nil)

	require.NoError(t, svc.DeleteDocument(context.Background(), doc.ID))

	exists, err := blobs.Exists(doc.FilePath)
	require.NoError(t, err)
	assert.False(t, exists)
	store.AssertExpectations(t)
}

func TestDeleteDocument_StorageFailureKeepsRow(t *testing.T) {
	store := mocks.NewMockStore()
	blobs := &mocks.MockBlobStore{}
	svc := NewDocumentService(store, blobs, testConfig(), testLogger())
	svc.now = fixedClock(day(2024, 5, 1))

	doc := &domain.Document{ID: uuid.New(), FilePath: "lease/abc/contract.pdf"}
	store.DocumentRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	blobs.On("Delete", doc.FilePath).Return(errors.New("disk unavailable"))

	err := svc.DeleteDocument(context.Background(), doc.ID)

	assert.Equal(t, customError.ErrCodeStorageError, customError.Code(err))
	store.DocumentRepo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything)
	blobs.AssertExpectations(t)
}

func TestDeleteDocument_RowFailureAfterFileRemoved(t *testing.T) {
	store := mocks.NewMockStore()
	blobs := &mocks.MockBlobStore{}
	svc := NewDocumentService(store, blobs, testConfig(), testLogger())
	svc.now = fixedClock(day(2024, 5, 1))

	doc := &domain.Document{ID: uuid.New(), FilePath: "lease/abc/contract.pdf"}
	store.DocumentRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	blobs.On("Delete", doc.FilePath).Return(nil)
	store.DocumentRepo.On("SoftDelete", mock.Anything, doc.ID, day(2024, 5, 1)).Return(sql.ErrNoRows)

	err := svc.DeleteDocument(context.Background(), doc.ID)

	assert.ErrorIs(t, err, customError.ErrDocumentNotFound)
	blobs.AssertExpectations(t)
}

func TestListDocuments(t *testing.T) {
	store := mocks.NewMockStore()
	svc, _ := newDocumentService(t, store)
	leaseID := uuid.New()

	store.DocumentRepo.On("ListByOwner", mock.Anything, domain.Documentable{Type: "lease", ID: leaseID}).
		Return([]*domain.Document{{ID: uuid.New()}}, nil)

	docs, err := svc.ListDocuments(context.Background(), "Lease", leaseID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	_, err = svc.ListDocuments(context.Background(), "company", leaseID)
	assert.ErrorIs(t, err, customError.ErrInvalidDocumentableKind)
}
