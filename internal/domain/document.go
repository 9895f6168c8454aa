package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	customError "github.com/segyhp/lease-engine/pkg/errors"
	"github.com/segyhp/lease-engine/pkg/utils"
)

// Documentable kinds
const (
	DocumentableLease    = "lease"
	DocumentablePayment  = "payment"
	DocumentableProperty = "property"
	DocumentableUnit     = "unit"
)

// DocumentableTables resolves a documentable kind to the table holding its owners
var DocumentableTables = map[string]string{
	DocumentableLease:    "leases",
	DocumentablePayment:  "payments",
	DocumentableProperty: "properties",
	DocumentableUnit:     "units",
}

const (
	DocumentTypeContract          = "contract"
	DocumentTypeReceipt           = "receipt"
	DocumentTypeInvoice           = "invoice"
	DocumentTypeIDDocument        = "id_document"
	DocumentTypeProofOfIncome     = "proof_of_income"
	DocumentTypeMaintenanceReport = "maintenance_report"
	DocumentTypeInspectionReport  = "inspection_report"
	DocumentTypeOther             = "other"
)

var documentTypes = map[string]struct{}{
	DocumentTypeContract:          {},
	DocumentTypeReceipt:           {},
	DocumentTypeInvoice:           {},
	DocumentTypeIDDocument:        {},
	DocumentTypeProofOfIncome:     {},
	DocumentTypeMaintenanceReport: {},
	DocumentTypeInspectionReport:  {},
	DocumentTypeOther:             {},
}

var imageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {}, "svg": {},
}

// Documentable identifies the owner of a document
type Documentable struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

// NewDocumentable validates kind against the lookup table
func NewDocumentable(kind string, id uuid.UUID) (Documentable, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if _, ok := DocumentableTables[kind]; !ok {
		return Documentable{}, customError.WrapInvalidDocumentableKind(kind)
	}
	return Documentable{Type: kind, ID: id}, nil
}

// Table returns the table that stores the owner
func (d Documentable) Table() string {
	return DocumentableTables[d.Type]
}

// Document is a file attached to a lease, payment, property or unit.
// File metadata is captured once at upload.
type Document struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	DocumentableType string        `json:"documentable_type" db:"documentable_type"`
	DocumentableID   uuid.UUID     `json:"documentable_id" db:"documentable_id"`
	Title            string        `json:"title" db:"title"`
	FileName         string        `json:"file_name" db:"file_name"`
	FilePath         string        `json:"file_path" db:"file_path"`
	FileType         *string       `json:"file_type" db:"file_type"`
	FileSize         *int64        `json:"file_size" db:"file_size"`
	Extension        *string       `json:"extension" db:"extension"`
	DocumentType     string        `json:"document_type" db:"document_type"`
	Description      *string       `json:"description,omitempty" db:"description"`
	DocumentDate     *time.Time    `json:"document_date,omitempty" db:"document_date"`
	UploadedBy       uuid.NullUUID `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
	DeletedAt        *time.Time    `json:"-" db:"deleted_at"`
}

func (d *Document) Owner() Documentable {
	return Documentable{Type: d.DocumentableType, ID: d.DocumentableID}
}

func (d *Document) FileSizeHuman() string {
	if d.FileSize == nil {
		return "Unknown"
	}
	return utils.HumanFileSize(*d.FileSize)
}

func (d *Document) IsImage() bool {
	if d.Extension == nil {
		return false
	}
	_, ok := imageExtensions[strings.ToLower(*d.Extension)]
	return ok
}

func (d *Document) IsPDF() bool {
	return d.Extension != nil && strings.ToLower(*d.Extension) == "pdf"
}

// NormalizeDocumentType maps an empty type to other and rejects unknown ones
func NormalizeDocumentType(t string) (string, bool) {
	if t == "" {
		return DocumentTypeOther, true
	}
	_, ok := documentTypes[t]
	return t, ok
}
