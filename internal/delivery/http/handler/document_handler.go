package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/delivery/http/middleware"
	"mediconnect/internal/usecase"
	"mediconnect/pkg/response"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// multipartOverhead is allowed on top of the file for the other form fields.
const multipartOverhead = 1 << 20

type DocumentHandler struct {
	documentUsecase usecase.DocumentUsecase
	log             *logrus.Logger
	maxBytes        int64
}

func NewDocumentHandler(documentUsecase usecase.DocumentUsecase, log *logrus.Logger, maxBytes int64) *DocumentHandler {
	return &DocumentHandler{
		documentUsecase: documentUsecase,
		log:             log,
		maxBytes:        maxBytes,
	}
}

// Upload handles medical document upload
// @Summary Upload a medical document
// @Description multipart/form-data with title, file and an optional doctor_id to share it with
// @Tags Documents
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param doctor_id formData string false "Doctor ID"
// @Param file formData file true "Document"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 413 {object} response.Response
// @Failure 415 {object} response.Response
// @Router /documents [post]
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, usecase.ErrDocumentTooLarge.Error(), nil)
			return
		}
		response.Error(w, http.StatusBadRequest, "Invalid multipart form", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.ValidationError(w, map[string]string{"file": "file is required"})
		return
	}
	defer file.Close()

	req := &dto.CreateDocumentRequest{
		Title:    r.FormValue("title"),
		FileName: header.Filename,
		FileSize: header.Size,
		File:     file,
	}
	if raw := r.FormValue("doctor_id"); raw != "" {
		doctorID, err := uuid.Parse(raw)
		if err != nil {
			response.ValidationError(w, map[string]string{"doctor_id": "doctor_id is invalid"})
			return
		}
		req.DoctorID = &doctorID
	}

	doc, err := h.documentUsecase.CreateDocument(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDocumentTitleRequired), errors.Is(err, usecase.ErrDocumentFileRequired):
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, usecase.ErrDocumentTooLarge):
			response.Error(w, http.StatusRequestEntityTooLarge, err.Error(), nil)
		case errors.Is(err, usecase.ErrDocumentType):
			response.Error(w, http.StatusUnsupportedMediaType, err.Error(), nil)
		case errors.Is(err, usecase.ErrDoctorNotFound):
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "Failed to upload document")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Document uploaded successfully", doc)
}

// List handles listing the caller's documents
// @Summary List my documents
// @Tags Documents
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /documents [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	docs, err := h.documentUsecase.ListDocuments(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "Failed to get documents")
		return
	}

	response.Success(w, http.StatusOK, "Documents retrieved successfully", docs)
}

// Get handles document metadata lookup
// @Summary Get document metadata
// @Tags Documents
// @Security BearerAuth
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "document")
	if !ok {
		return
	}

	doc, err := h.documentUsecase.GetDocument(r.Context(), userID, middleware.GetRoleFlagsFromContext(r.Context()), id)
	if err != nil {
		h.writeAccessError(w, err, "Failed to get document")
		return
	}

	response.Success(w, http.StatusOK, "Document retrieved successfully", doc)
}

// Download streams the stored file
// @Summary Download a document
// @Tags Documents
// @Security BearerAuth
// @Produce octet-stream
// @Param id path string true "Document ID"
// @Success 200 {file} file
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "document")
	if !ok {
		return
	}

	rc, doc, err := h.documentUsecase.OpenDocument(r.Context(), userID, middleware.GetRoleFlagsFromContext(r.Context()), id)
	if err != nil {
		h.writeAccessError(w, err, "Failed to download document")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", doc.FileType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Title+path.Ext(doc.FilePath)))
	if doc.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.FileSize, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.log.Warnf("Failed to stream document %s: %+v", id, err)
	}
}

// Delete handles document deletion
// @Summary Delete a document
// @Description Removes the stored file first; the record is kept if that fails.
// @Tags Documents
// @Security BearerAuth
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "document")
	if !ok {
		return
	}

	err := h.documentUsecase.DeleteDocument(r.Context(), userID, middleware.GetRoleFlagsFromContext(r.Context()), id)
	if err != nil {
		h.writeAccessError(w, err, "Failed to delete document")
		return
	}

	response.Success(w, http.StatusOK, "Document deleted successfully", nil)
}

func (h *DocumentHandler) writeAccessError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrDocumentNotFound):
		response.NotFound(w, "Document not found")
	case errors.Is(err, usecase.ErrDocumentForbidden):
		response.Forbidden(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
