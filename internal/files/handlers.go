package files

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"esquad-go/internal/identity"
	"esquad-go/internal/validation"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// sendJSON handles JSON response formatting consistently
func sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("error encoding JSON response")
	}
}

func sendError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, map[string]string{"error": message})
}

// sendValidationError collapses a validator error into a 400 with the first
// field message.
func sendValidationError(w http.ResponseWriter, err error) {
	formatted := validation.FormatError(err)
	if len(formatted) > 0 {
		sendError(w, http.StatusBadRequest, formatted[0].Error)
		return
	}
	sendError(w, http.StatusBadRequest, "invalid request")
}

// HandleUpload handles POST /api/files
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.Upload(r.Context(), &req)
	if err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			sendValidationError(w, err)
			return
		}
		log.Error().Err(err).Str("file_name", req.OriginalFileName).Msg("error registering upload")
		sendError(w, http.StatusInternalServerError, "error registering upload")
		return
	}

	sendJSON(w, http.StatusOK, resp)
}

// HandlePreview handles GET /api/files/{fileKey}. Issues a view URL with no
// metadata read and no logging.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	fileKey := chi.URLParam(r, "fileKey")
	if fileKey == "" {
		sendError(w, http.StatusBadRequest, "fileKey is required")
		return
	}

	url, err := h.service.Preview(r.Context(), fileKey, r.URL.Query().Get("contentType"))
	if err != nil {
		log.Error().Err(err).Str("file_key", fileKey).Msg("error issuing preview URL")
		sendError(w, http.StatusInternalServerError, "error issuing preview URL")
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{"presignedUrl": url})
}

// HandleDownload handles GET /api/files/{fileKey}/download
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	fileKey := chi.URLParam(r, "fileKey")
	if fileKey == "" {
		sendError(w, http.StatusBadRequest, "fileKey is required")
		return
	}

	url, err := h.service.Download(r.Context(), fileKey, identity.FromRequest(r))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			sendError(w, http.StatusNotFound, "file not found")
			return
		}
		log.Error().Err(err).Str("file_key", fileKey).Msg("error issuing download URL")
		sendError(w, http.StatusInternalServerError, "error issuing download URL")
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{"presignedUrl": url})
}

// HandleDelete handles DELETE /api/files/{fileKey}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	fileKey := chi.URLParam(r, "fileKey")
	if fileKey == "" {
		sendError(w, http.StatusBadRequest, "fileKey is required")
		return
	}

	url, err := h.service.Delete(r.Context(), fileKey, identity.FromRequest(r))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			sendError(w, http.StatusNotFound, "file not found")
			return
		}
		log.Error().Err(err).Str("file_key", fileKey).Msg("error deleting file")
		sendError(w, http.StatusInternalServerError, "error deleting file")
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{"presignedUrl": url})
}

// HandleStoreMetadata handles POST /api/files/metadata. The body nests the
// row under "metadata" with the key alongside it; a top-level fileKey wins
// over one inside the row.
func (h *Handler) HandleStoreMetadata(w http.ResponseWriter, r *http.Request) {
	var req StoreMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	meta := req.Metadata
	if req.FileKey != "" {
		meta.FileKey = req.FileKey
	}

	stored, err := h.service.StoreMetadata(r.Context(), &meta)
	if err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			sendValidationError(w, err)
			return
		}
		log.Error().Err(err).Str("file_key", meta.FileKey).Msg("error storing metadata")
		sendError(w, http.StatusInternalServerError, "error storing metadata")
		return
	}

	sendJSON(w, http.StatusOK, stored)
}

// HandleListByTarget handles GET /api/files/metadata?targetId=&targetType=&limit=&lastEvaluatedKey=
func (h *Handler) HandleListByTarget(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	q := TargetQuery{
		TargetID:         query.Get("targetId"),
		TargetType:       query.Get("targetType"),
		LastEvaluatedKey: query.Get("lastEvaluatedKey"),
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.ParseInt(limitStr, 10, 32)
		if err != nil || limit <= 0 {
			sendError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		q.Limit = int32(limit)
	}

	page, err := h.service.ListByTarget(r.Context(), q)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingTarget):
			sendError(w, http.StatusBadRequest, "targetId is required")
		case errors.Is(err, ErrBadPageKey):
			sendError(w, http.StatusBadRequest, "malformed lastEvaluatedKey")
		default:
			log.Error().Err(err).Str("target_id", q.TargetID).Msg("error listing files by target")
			sendError(w, http.StatusInternalServerError, "error fetching files")
		}
		return
	}

	sendJSON(w, http.StatusOK, page)
}

// HandleListByUser handles GET /api/files/usage?userEmail=
func (h *Handler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	userEmail := r.URL.Query().Get("userEmail")
	if userEmail == "" {
		sendError(w, http.StatusBadRequest, "userEmail is required")
		return
	}

	items, err := h.service.ListByUser(r.Context(), userEmail)
	if err != nil {
		log.Error().Err(err).Str("user_email", userEmail).Msg("error listing files by user")
		sendError(w, http.StatusInternalServerError, "error fetching files")
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// HandleUsageStats handles GET /api/files/usage/stats?userEmail=
func (h *Handler) HandleUsageStats(w http.ResponseWriter, r *http.Request) {
	userEmail := r.URL.Query().Get("userEmail")
	if userEmail == "" {
		sendError(w, http.StatusBadRequest, "userEmail is required")
		return
	}

	stats, err := h.service.UsageStats(r.Context(), userEmail)
	if err != nil {
		log.Error().Err(err).Str("user_email", userEmail).Msg("error computing usage stats")
		sendError(w, http.StatusInternalServerError, "error fetching usage stats")
		return
	}

	sendJSON(w, http.StatusOK, stats)
}

// HandleListAll handles GET /api/admin/files. Walks the entire table; admin
// only.
func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("error listing all metadata")
		sendError(w, http.StatusInternalServerError, "error fetching files")
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}
