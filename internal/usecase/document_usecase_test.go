package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	"mediconnect/internal/infrastructure/storage"
	repoimpl "mediconnect/internal/repository"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testBucket = "medical-documents"

type documentFixture struct {
	db    *gorm.DB
	docs  DocumentUsecase
	repo  *stubDocumentRepo
	blobs *stubBlobStore
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	db := setupTestDB(t)
	log := quietLogger()
	repo := &stubDocumentRepo{MedicalDocumentRepository: repoimpl.NewMedicalDocumentRepository()}
	blobs := newStubBlobStore()

	return &documentFixture{
		db:    db,
		docs:  NewDocumentUsecase(db, log, repo, repoimpl.NewProfileRepository(), newAuditService(log), blobs, testBucket, 1<<20),
		repo:  repo,
		blobs: blobs,
	}
}

func labReport(title string) *dto.CreateDocumentRequest {
	content := "Hemoglobin 14.1 g/dL\nLeukocytes 6.2 x10^9/L\n"
	return &dto.CreateDocumentRequest{
		Title:    title,
		FileName: "blood-test.txt",
		FileSize: int64(len(content)),
		File:     strings.NewReader(content),
	}
}

func TestDocument_CreateStoresBlobAndRow(t *testing.T) {
	f := newDocumentFixture(t)
	owner := uuid.New()

	doc, err := f.docs.CreateDocument(context.Background(), owner, labReport("  Blood test  "))
	require.NoError(t, err)

	assert.Equal(t, "Blood test", doc.Title)
	assert.True(t, strings.HasPrefix(doc.FilePath, owner.String()+"/"))
	assert.True(t, strings.HasSuffix(doc.FilePath, ".txt"))
	assert.Contains(t, doc.FileType, "text/plain")
	assert.Equal(t, 1, f.blobs.puts)
	assert.Equal(t, int64(1), countRows(t, f.db, &entity.MedicalDocument{}))
	assert.Equal(t, "Hemoglobin 14.1 g/dL\nLeukocytes 6.2 x10^9/L\n", string(f.blobs.objects[testBucket+"/"+doc.FilePath]))
}

func TestDocument_EmptyTitleRejectedBeforeStorage(t *testing.T) {
	f := newDocumentFixture(t)

	for _, title := range []string{"", "   "} {
		_, err := f.docs.CreateDocument(context.Background(), uuid.New(), labReport(title))
		assert.ErrorIs(t, err, ErrDocumentTitleRequired)
	}

	assert.Zero(t, f.blobs.puts)
	assert.Zero(t, f.repo.creates)
}

func TestDocument_BlobFailureCreatesNoRow(t *testing.T) {
	f := newDocumentFixture(t)
	f.blobs.putErr = errBackend

	_, err := f.docs.CreateDocument(context.Background(), uuid.New(), labReport("Blood test"))

	assert.ErrorIs(t, err, errBackend)
	assert.Zero(t, f.repo.creates)
	assert.Zero(t, countRows(t, f.db, &entity.MedicalDocument{}))
}

func TestDocument_MetadataFailureRemovesBlob(t *testing.T) {
	f := newDocumentFixture(t)
	f.repo.createErr = errors.New("insert failed")

	_, err := f.docs.CreateDocument(context.Background(), uuid.New(), labReport("Blood test"))

	assert.ErrorIs(t, err, f.repo.createErr)
	assert.Equal(t, 1, f.blobs.puts)
	assert.Equal(t, 1, f.blobs.removes)
	assert.Empty(t, f.blobs.objects)
}

func TestDocument_FailedCompensationIsReported(t *testing.T) {
	f := newDocumentFixture(t)
	f.repo.createErr = errors.New("insert failed")
	f.blobs.removeErr = errors.New("storage offline")

	_, err := f.docs.CreateDocument(context.Background(), uuid.New(), labReport("Blood test"))

	assert.ErrorIs(t, err, f.repo.createErr)
	assert.ErrorIs(t, err, f.blobs.removeErr)
	assert.Len(t, f.blobs.objects, 1)
}

func TestDocument_CancelledUploadStillRemovesBlob(t *testing.T) {
	db := setupTestDB(t)
	log := quietLogger()
	fs := afero.NewMemMapFs()
	owner := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The client goes away while the row is being written.
	repo := &stubDocumentRepo{
		MedicalDocumentRepository: repoimpl.NewMedicalDocumentRepository(),
		beforeCreate:              cancel,
		createErr:                 context.Canceled,
	}
	docs := NewDocumentUsecase(db, log, repo, repoimpl.NewProfileRepository(), newAuditService(log), storage.NewBlobStore(fs), testBucket, 1<<20)

	_, err := docs.CreateDocument(ctx, owner, labReport("Blood test"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, repo.creates)
	assert.Zero(t, countRows(t, db, &entity.MedicalDocument{}))

	left, err := afero.ReadDir(fs, testBucket+"/"+owner.String())
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestDocument_StorageExtensionFollowsContent(t *testing.T) {
	f := newDocumentFixture(t)
	content := "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"

	doc, err := f.docs.CreateDocument(context.Background(), uuid.New(), &dto.CreateDocumentRequest{
		Title:    "Discharge letter",
		FileName: "letter.html",
		FileSize: int64(len(content)),
		File:     strings.NewReader(content),
	})
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", doc.FileType)
	assert.True(t, strings.HasSuffix(doc.FilePath, ".pdf"), doc.FilePath)
}

func TestDocument_RejectsUnsupportedType(t *testing.T) {
	f := newDocumentFixture(t)
	req := labReport("Binary")
	req.File = strings.NewReader("\x7fELF\x02\x01\x01\x00\x00\x00\x00\x00\x00\x00\x00\x00")
	req.FileName = "tool"

	_, err := f.docs.CreateDocument(context.Background(), uuid.New(), req)

	assert.ErrorIs(t, err, ErrDocumentType)
	assert.Zero(t, f.blobs.puts)
}

func TestDocument_DeleteRemovesBlobAndRow(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	doc, err := f.docs.CreateDocument(ctx, owner, labReport("Blood test"))
	require.NoError(t, err)

	require.NoError(t, f.docs.DeleteDocument(ctx, owner, entity.RoleFlags{}, doc.ID))

	assert.Zero(t, countRows(t, f.db, &entity.MedicalDocument{}))
	assert.Empty(t, f.blobs.objects)
}

func TestDocument_DeleteBlobFailureKeepsRow(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	doc, err := f.docs.CreateDocument(ctx, owner, labReport("Blood test"))
	require.NoError(t, err)

	f.blobs.removeErr = errBackend
	err = f.docs.DeleteDocument(ctx, owner, entity.RoleFlags{}, doc.ID)

	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, int64(1), countRows(t, f.db, &entity.MedicalDocument{}))
	assert.Zero(t, countRows(t, f.db.Where("action = ?", entity.AuditActionDocumentDelete), &entity.AuditLog{}))
}

func TestDocument_DeleteCommitsAfterRequestCancelled(t *testing.T) {
	f := newDocumentFixture(t)
	owner := uuid.New()
	doc, err := f.docs.CreateDocument(context.Background(), owner, labReport("Blood test"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// The client goes away right after the blob is removed.
	f.blobs.afterRemove = cancel

	require.NoError(t, f.docs.DeleteDocument(ctx, owner, entity.RoleFlags{}, doc.ID))

	assert.Error(t, ctx.Err())
	assert.Empty(t, f.blobs.objects)
	assert.Zero(t, countRows(t, f.db, &entity.MedicalDocument{}))
	assert.Equal(t, int64(1), countRows(t, f.db.Where("action = ?", entity.AuditActionDocumentDelete), &entity.AuditLog{}))
}

func TestDocument_DeleteWithCancelledRequestKeepsBoth(t *testing.T) {
	f := newDocumentFixture(t)
	owner := uuid.New()
	doc, err := f.docs.CreateDocument(context.Background(), owner, labReport("Blood test"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = f.docs.DeleteDocument(ctx, owner, entity.RoleFlags{}, doc.ID)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, f.blobs.objects, 1)
	assert.Equal(t, int64(1), countRows(t, f.db, &entity.MedicalDocument{}))
}

func TestDocument_AccessRules(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()
	doc, err := f.docs.CreateDocument(ctx, owner, labReport("Blood test"))
	require.NoError(t, err)

	_, err = f.docs.GetDocument(ctx, stranger, entity.RoleFlags{}, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentForbidden)

	err = f.docs.DeleteDocument(ctx, stranger, entity.RoleFlags{IsDoctor: true}, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentForbidden)

	rc, meta, err := f.docs.OpenDocument(ctx, stranger, entity.RoleFlags{IsAdmin: true}, doc.ID)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, meta.ID)
	assert.Contains(t, string(body), "Hemoglobin")

	list, err := f.docs.ListDocuments(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.docs.GetDocument(ctx, owner, entity.RoleFlags{}, uuid.New())
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}
