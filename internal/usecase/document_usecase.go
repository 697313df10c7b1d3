package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"mediconnect/internal/converter"
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	"mediconnect/internal/domain/repository"
	"mediconnect/internal/service"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDocumentNotFound      = errors.New("document not found")
	ErrDocumentForbidden     = errors.New("not allowed to access this document")
	ErrDocumentTitleRequired = errors.New("document title is required")
	ErrDocumentFileRequired  = errors.New("document file is required")
	ErrDocumentTooLarge      = errors.New("document exceeds the upload limit")
	ErrDocumentType          = errors.New("document type is not supported")
	ErrDoctorNotFound        = errors.New("doctor not found")
)

const (
	// sniffLen is how much of an upload is read for content type detection.
	sniffLen = 3072

	// settleTimeout bounds the steps that must finish once a document
	// operation has touched storage, even after the request is gone.
	settleTimeout = 30 * time.Second
)

var allowedDocumentTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/heic",
	"text/plain",
	"application/dicom",
}

type DocumentUsecase interface {
	CreateDocument(ctx context.Context, ownerID uuid.UUID, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error)
	DeleteDocument(ctx context.Context, requesterID uuid.UUID, flags entity.RoleFlags, id uuid.UUID) error
	ListDocuments(ctx context.Context, ownerID uuid.UUID) ([]dto.DocumentResponse, error)
	GetDocument(ctx context.Context, requesterID uuid.UUID, flags entity.RoleFlags, id uuid.UUID) (*dto.DocumentResponse, error)
	// OpenDocument streams the blob. The caller closes the reader.
	OpenDocument(ctx context.Context, requesterID uuid.UUID, flags entity.RoleFlags, id uuid.UUID) (io.ReadCloser, *dto.DocumentResponse, error)
}

type documentUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	documentRepo repository.MedicalDocumentRepository
	profileRepo  repository.ProfileRepository
	auditService service.AuditService
	blobStore    repository.BlobStore
	bucket       string
	maxBytes     int64
}

func NewDocumentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	documentRepo repository.MedicalDocumentRepository,
	profileRepo repository.ProfileRepository,
	auditService service.AuditService,
	blobStore repository.BlobStore,
	bucket string,
	maxBytes int64,
) DocumentUsecase {
	return &documentUsecase{
		db:           db,
		log:          log,
		documentRepo: documentRepo,
		profileRepo:  profileRepo,
		auditService: auditService,
		blobStore:    blobStore,
		bucket:       bucket,
		maxBytes:     maxBytes,
	}
}

// CreateDocument writes the blob, then the metadata row. If the row cannot
// be written the blob is removed again.
func (u *documentUsecase) CreateDocument(ctx context.Context, ownerID uuid.UUID, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrDocumentTitleRequired
	}
	if req.File == nil {
		return nil, ErrDocumentFileRequired
	}
	if u.maxBytes > 0 && req.FileSize > u.maxBytes {
		return nil, ErrDocumentTooLarge
	}

	if req.DoctorID != nil {
		doctor, err := u.profileRepo.FindByID(ctx, u.db, *req.DoctorID)
		if err != nil || doctor == nil || !doctor.IsDoctor {
			return nil, ErrDoctorNotFound
		}
	}

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(req.File, header)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		u.log.Warnf("Failed to read upload: %+v", err)
		return nil, err
	}
	header = header[:n]
	if n == 0 {
		return nil, ErrDocumentFileRequired
	}

	mtype := mimetype.Detect(header)
	if !isAllowedDocumentType(mtype) {
		return nil, ErrDocumentType
	}

	ext := mtype.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(req.FileName))
	}
	key := fmt.Sprintf("%s/%s%s", ownerID, uuid.New(), ext)

	path, err := u.blobStore.Put(ctx, u.bucket, key, io.MultiReader(bytes.NewReader(header), req.File))
	if err != nil {
		u.log.Warnf("Failed to store document blob %s: %+v", key, err)
		return nil, err
	}

	doc := &entity.MedicalDocument{
		PatientID: ownerID,
		DoctorID:  req.DoctorID,
		Title:     title,
		FilePath:  path,
		FileType:  mtype.String(),
		FileSize:  req.FileSize,
	}

	if err := u.insertDocument(ctx, ownerID, doc); err != nil {
		return nil, u.compensateUpload(ctx, path, err)
	}

	return converter.DocumentToResponse(doc), nil
}

func (u *documentUsecase) insertDocument(ctx context.Context, ownerID uuid.UUID, doc *entity.MedicalDocument) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.documentRepo.Create(ctx, tx, doc); err != nil {
		u.log.Warnf("Failed to create document metadata: %+v", err)
		return err
	}

	if err := u.auditService.LogCreate(ctx, tx, &ownerID, entity.AuditActionDocumentCreate, "medical_document", doc.ID.String(), doc); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}
	return nil
}

// compensateUpload removes a blob whose metadata row was never written. It
// runs detached from ctx: a cancelled request is the usual reason the row
// failed.
func (u *documentUsecase) compensateUpload(ctx context.Context, path string, cause error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	if err := u.blobStore.Remove(ctx, u.bucket, path); err != nil {
		u.log.Errorf("Failed to remove orphaned document blob %s: %+v", path, err)
		service.DocumentCompensationsTotal.WithLabelValues("create", "failed").Inc()
		return errors.Join(cause, fmt.Errorf("remove orphaned blob %s: %w", path, err))
	}

	service.DocumentCompensationsTotal.WithLabelValues("create", "ok").Inc()
	return cause
}

// DeleteDocument deletes the row inside a transaction that is only
// committed once the blob is gone. The transaction is detached from ctx so
// that a removed blob is always followed by the commit.
func (u *documentUsecase) DeleteDocument(ctx context.Context, requesterID uuid.UUID, flags entity.RoleFlags, id uuid.UUID) error {
	doc, err := u.documentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find document: %+v", err)
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if doc.PatientID != requesterID && !flags.IsAdmin {
		return ErrDocumentForbidden
	}

	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	tx := u.db.WithContext(settleCtx).Begin()
	defer tx.Rollback()

	if err := u.documentRepo.Delete(settleCtx, tx, id); err != nil {
		u.log.Warnf("Failed to delete document metadata: %+v", err)
		return err
	}

	if err := u.auditService.LogDelete(settleCtx, tx, &requesterID, entity.AuditActionDocumentDelete, "medical_document", id.String(), doc); err != nil {
		return err
	}

	// Last point where the request can still abort without side effects.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := u.blobStore.Remove(settleCtx, u.bucket, doc.FilePath); err != nil {
		u.log.Warnf("Failed to remove document blob %s, keeping metadata: %+v", doc.FilePath, err)
		service.DocumentCompensationsTotal.WithLabelValues("delete", "kept").Inc()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Errorf("Document blob %s removed but metadata commit failed: %+v", doc.FilePath, err)
		service.DocumentCompensationsTotal.WithLabelValues("delete", "failed").Inc()
		return err
	}

	return nil
}

func (u *documentUsecase) ListDocuments(ctx context.Context, ownerID uuid.UUID) ([]dto.DocumentResponse, error) {
	docs, err := u.documentRepo.FindByPatientID(ctx, u.db, ownerID)
	if err != nil {
		u.log.Warnf("Failed to list documents: %+v", err)
		return nil, err
	}
	return converter.DocumentsToResponses(docs), nil
}

func (u *documentUsecase) GetDocument(ctx context.Context, requesterID uuid.UUID, flags entity.RoleFlags, id uuid.UUID) (*dto.DocumentResponse, error) {
	doc, err := u.readable(ctx, requesterID, flags, id)
	if err != nil {
		return nil, err
	}
	return converter.DocumentToResponse(doc), nil
}

func (u *documentUsecase) OpenDocument(ctx context.Context, requesterID uuid.UUID, flags entity.RoleFlags, id uuid.UUID) (io.ReadCloser, *dto.DocumentResponse, error) {
	doc, err := u.readable(ctx, requesterID, flags, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := u.blobStore.Open(ctx, u.bucket, doc.FilePath)
	if err != nil {
		if errors.Is(err, repository.ErrBlobNotFound) {
			u.log.Errorf("Document %s has no blob at %s", doc.ID, doc.FilePath)
			return nil, nil, ErrDocumentNotFound
		}
		u.log.Warnf("Failed to open document blob: %+v", err)
		return nil, nil, err
	}

	return rc, converter.DocumentToResponse(doc), nil
}

func (u *documentUsecase) readable(ctx context.Context, requesterID uuid.UUID, flags entity.RoleFlags, id uuid.UUID) (*entity.MedicalDocument, error) {
	doc, err := u.documentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find document: %+v", err)
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	if !doc.CanRead(requesterID, flags) {
		return nil, ErrDocumentForbidden
	}
	return doc, nil
}

func isAllowedDocumentType(mtype *mimetype.MIME) bool {
	for _, allowed := range allowedDocumentTypes {
		if mtype.Is(allowed) {
			return true
		}
	}
	return false
}
