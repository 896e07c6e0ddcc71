// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"pdf-extract-server/internal/domain"
	apperrors "pdf-extract-server/pkg/errors"

	"github.com/gorilla/mux"
)

// UploadField is the multipart field that carries the PDF
const UploadField = "file"

// ExtractionHandler handles extraction-related HTTP requests
type ExtractionHandler struct {
	service     domain.ExtractionService
	maxFileSize int64
	logger      domain.Logger
}

// NewExtractionHandler creates a new extraction handler. maxFileSize <= 0
// disables the upload limit.
func NewExtractionHandler(service domain.ExtractionService, maxFileSize int64, logger domain.Logger) *ExtractionHandler {
	return &ExtractionHandler{
		service:     service,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Upload handles POST /upload: extracts the text of the uploaded PDF and
// returns it as an extracted_text.txt attachment.
func (h *ExtractionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	}

	part, err := nextUploadPart(r)
	if err != nil {
		h.writeAppError(w, r, h.formFileError(err))
		return
	}
	defer part.Close()

	extraction, err := h.service.Extract(r.Context(), &domain.Upload{
		Filename: part.FileName(),
		Reader:   part,
	})
	if err != nil {
		h.writeAppError(w, r, h.extractError(err))
		return
	}

	// Written directly: the body is the result of this POST, so Range and
	// conditional headers do not apply.
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+domain.TextFileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(extraction.Text)))
	w.Header().Set("X-Extraction-ID", extraction.Source.Key)
	w.Header().Set("X-Page-Count", strconv.Itoa(extraction.PageCount))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(extraction.Text)
}

// nextUploadPart streams the multipart body up to the first "file" part that
// carries a filename attribute. A "file" part without one is a plain form
// field and does not count as an upload.
func nextUploadPart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, http.ErrMissingFile
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == UploadField && hasFilename(part) {
			return part, nil
		}
		part.Close()
	}
}

func hasFilename(part *multipart.Part) bool {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return false
	}
	_, ok := params["filename"]
	return ok
}

// List handles GET /extractions
func (h *ExtractionHandler) List(w http.ResponseWriter, r *http.Request) {
	artifacts, err := h.service.List(r.Context())
	if err != nil {
		h.writeAppError(w, r, h.lookupError(err))
		return
	}
	if artifacts == nil {
		artifacts = make([]*domain.Artifact, 0)
	}
	writeJSON(w, http.StatusOK, artifacts)
}

// Get handles GET /extractions/{id}
func (h *ExtractionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rc, artifact, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeAppError(w, r, h.lookupError(err))
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+domain.TextFileName+`"`)
	w.Header().Set("X-Extraction-ID", artifact.ID)
	http.ServeContent(w, r, domain.TextFileName, artifact.CreatedAt, rc)
}

// Delete handles DELETE /extractions/{id}
func (h *ExtractionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeAppError(w, r, h.lookupError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ExtractionHandler) formFileError(err error) *apperrors.AppError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.NewTooLargeError("File too large")
	}
	if errors.Is(err, http.ErrMissingFile) {
		return apperrors.NewValidationError("No file uploaded")
	}
	return apperrors.NewValidationError("No file uploaded", err.Error())
}

// extractError maps a service failure to a response. Unreadable documents are
// reported with their reason only in the scoped layout; the shared layout
// answers them as an internal failure.
func (h *ExtractionHandler) extractError(err error) *apperrors.AppError {
	var tooLarge *http.MaxBytesError
	var ee *domain.ExtractionError
	switch {
	case errors.As(err, &ee):
		if h.service.Layout() == domain.LayoutShared {
			return apperrors.NewInternalError("Internal server error", err)
		}
		return apperrors.NewProcessingError("Could not extract text", string(ee.Reason), err)
	case errors.Is(err, domain.ErrNoSelectedFile):
		return apperrors.NewValidationError("No selected file")
	case errors.Is(err, domain.ErrNoFileUploaded), errors.Is(err, io.ErrUnexpectedEOF):
		return apperrors.NewValidationError("No file uploaded")
	case errors.As(err, &tooLarge):
		return apperrors.NewTooLargeError("File too large")
	default:
		return apperrors.NewInternalError("Internal server error", err)
	}
}

func (h *ExtractionHandler) lookupError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, domain.ErrInvalidExtraction):
		return apperrors.NewValidationError("Invalid extraction id")
	case errors.Is(err, domain.ErrExtractionNotFound), errors.Is(err, domain.ErrLayoutUnsupported):
		return apperrors.NewNotFoundError("Extraction not found")
	default:
		return apperrors.NewInternalError("Internal server error", err)
	}
}

func (h *ExtractionHandler) writeAppError(w http.ResponseWriter, r *http.Request, appErr *apperrors.AppError) {
	requestID, _ := GetRequestIDFromContext(r.Context())
	status := apperrors.GetStatusCode(appErr)
	switch {
	case status >= http.StatusInternalServerError:
		fields := []interface{}{"request_id", requestID, "path", r.URL.Path}
		if reason, ok := domain.ReasonOf(appErr.Cause); ok {
			fields = append(fields, "reason", string(reason))
		}
		h.logger.Error("Request failed", appErr.Cause, fields...)
	case apperrors.IsType(appErr, apperrors.ErrorTypeProcessing):
		h.logger.Warn("Extraction rejected", "request_id", requestID, "reason", appErr.Reason, "error", appErr.Cause)
	}
	writeErrorReason(w, status, appErr.Message, appErr.Reason)
}
