package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mdshelf/mdshelf/internal/auth"
	"github.com/mdshelf/mdshelf/internal/handler/dto"
	"github.com/mdshelf/mdshelf/internal/model"
	"github.com/mdshelf/mdshelf/internal/service"
)

// FileService is the business logic surface the file handler depends on.
// *service.FileService satisfies it.
type FileService interface {
	ListFiles(ctx context.Context, ownerID string, input service.ListFilesInput) (*service.ListFilesOutput, error)
	Upload(ctx context.Context, ownerID, filename, content string, visibility model.Visibility) (*model.File, error)
	UploadAnonymous(ctx context.Context, filename, content string, visibility model.Visibility) (*model.File, error)
	GetByID(ctx context.Context, fileID string, ownerID *string) (*model.File, error)
	Claim(ctx context.Context, fileID, claimantID string) (*model.File, error)
	Delete(ctx context.Context, fileID, ownerID string) error
}

// FileHandler handles HTTP requests for file operations.
type FileHandler struct {
	svc            FileService
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(svc FileService, logger *slog.Logger, maxUploadBytes int64) *FileHandler {
	return &FileHandler{
		svc:            svc,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// List handles GET /files.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	input, errMsg := parseListParams(r)
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	result, err := h.svc.ListFiles(r.Context(), user.ID, input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToFileListResponse(result), "")
}

// Get handles GET /files/{id}. Owner-scoped: another owner's file and a
// missing file are indistinguishable.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "File ID is required")
		return
	}

	file, err := h.svc.GetByID(r.Context(), id, &user.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToFileWithContent(file), "")
}

// Upload handles POST /files/upload.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	filename, content, visibility, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	file, err := h.svc.Upload(r.Context(), user.ID, filename, content, visibility)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("file uploaded",
		"file_id", file.ID,
		"owner_id", user.ID,
		"size_bytes", file.SizeBytes,
	)

	writeSuccess(w, http.StatusCreated, dto.ToFileMetadata(file), "File uploaded successfully")
}

// UploadAnonymous handles POST /files/upload-anonymous. No auth; the file
// is created ownerless and stays claimable exactly once.
func (h *FileHandler) UploadAnonymous(w http.ResponseWriter, r *http.Request) {
	filename, content, visibility, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	file, err := h.svc.UploadAnonymous(r.Context(), filename, content, visibility)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("anonymous file uploaded",
		"file_id", file.ID,
		"size_bytes", file.SizeBytes,
	)

	writeSuccess(w, http.StatusCreated, dto.ToFileMetadata(file),
		"File uploaded successfully. Please login to claim ownership.")
}

// Claim handles POST /files/{id}/claim.
func (h *FileHandler) Claim(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "File ID is required")
		return
	}

	file, err := h.svc.Claim(r.Context(), id, user.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("file claimed", "file_id", file.ID, "owner_id", user.ID)

	writeSuccess(w, http.StatusOK, dto.ToFileMetadata(file), "File claimed successfully")
}

// Delete handles DELETE /files/{id}.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "File ID is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id, user.ID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("file deleted", "file_id", id, "owner_id", user.ID)

	writeSuccess(w, http.StatusOK, nil, "File deleted successfully")
}

// readUpload parses and validates a multipart upload. It enforces the
// ingestion boundary: .md extension, size cap, and visibility enum, all
// before any business logic runs. On failure it writes the error response
// and returns ok=false.
func (h *FileHandler) readUpload(w http.ResponseWriter, r *http.Request) (filename, content string, visibility model.Visibility, ok bool) {
	// Cap the whole request body; the slack covers multipart framing and
	// the visibility field.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+64*1024)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "File exceeds the maximum allowed size of 5MB")
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer part.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".md") {
		writeError(w, http.StatusBadRequest, "Only .md files are allowed")
		return
	}

	if header.Size > h.maxUploadBytes {
		writeError(w, http.StatusBadRequest, "File exceeds the maximum allowed size of 5MB")
		return
	}

	data, err := io.ReadAll(io.LimitReader(part, h.maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		writeError(w, http.StatusBadRequest, "File exceeds the maximum allowed size of 5MB")
		return
	}

	visibility = model.Visibility(r.FormValue("visibility"))
	if visibility != "" && !visibility.IsValid() {
		writeError(w, http.StatusBadRequest, "Invalid visibility value")
		return
	}

	return header.Filename, string(data), visibility, true
}

// parseListParams validates the listing query string. Unknown enum values
// are rejected here so nothing unvalidated reaches the listing engine;
// an over-cap limit is the one exception, clamped silently downstream.
func parseListParams(r *http.Request) (service.ListFilesInput, string) {
	var input service.ListFilesInput
	query := r.URL.Query()

	if v := query.Get("visibility"); v != "" {
		visibility := model.Visibility(v)
		if !visibility.IsValid() {
			return input, "Invalid visibility value"
		}
		input.Visibility = visibility
	}

	if s := query.Get("sort"); s != "" {
		sort := model.SortField(s)
		if !sort.IsValid() {
			return input, "Invalid sort field"
		}
		input.Sort = sort
	}

	if o := query.Get("order"); o != "" {
		order := model.SortOrder(o)
		if !order.IsValid() {
			return input, "Invalid sort order"
		}
		input.Order = order
	}

	if p := query.Get("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil || page <= 0 {
			return input, "Page must be a positive integer"
		}
		input.Page = page
	}

	if l := query.Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			return input, "Limit must be a non-negative integer"
		}
		input.Limit = limit
	}

	input.Search = query.Get("search")

	return input, ""
}
