package activity

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

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

// HandleListByAction handles GET /api/logs/action/{action}
func (h *Handler) HandleListByAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")

	entries, err := h.service.ListByAction(r.Context(), action)
	if err != nil {
		if errors.Is(err, ErrInvalidAction) {
			sendError(w, http.StatusBadRequest, "action must be DOWNLOAD or DELETE")
			return
		}
		log.Error().Err(err).Str("action", action).Msg("error listing logs by action")
		sendError(w, http.StatusInternalServerError, "error fetching logs")
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{"items": entries})
}

// HandleUserDeletes handles GET /api/logs/user-delete?uploaderEmail=
func (h *Handler) HandleUserDeletes(w http.ResponseWriter, r *http.Request) {
	uploaderEmail := r.URL.Query().Get("uploaderEmail")
	if uploaderEmail == "" {
		sendError(w, http.StatusBadRequest, "uploaderEmail is required")
		return
	}

	entries, err := h.service.ListDeletesByUploader(r.Context(), uploaderEmail)
	if err != nil {
		log.Error().Err(err).Str("uploader_email", uploaderEmail).Msg("error listing delete logs")
		sendError(w, http.StatusInternalServerError, "error fetching logs")
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{"items": entries})
}

// HandleUserDownloads handles GET /api/logs/user-download?userEmail=
func (h *Handler) HandleUserDownloads(w http.ResponseWriter, r *http.Request) {
	userEmail := r.URL.Query().Get("userEmail")
	if userEmail == "" {
		sendError(w, http.StatusBadRequest, "userEmail is required")
		return
	}

	entries, err := h.service.ListDownloadsByUser(r.Context(), userEmail)
	if err != nil {
		log.Error().Err(err).Str("user_email", userEmail).Msg("error listing download logs")
		sendError(w, http.StatusInternalServerError, "error fetching logs")
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{"items": entries})
}

// HandleDeleteLog handles DELETE /api/logs/{logId}
func (h *Handler) HandleDeleteLog(w http.ResponseWriter, r *http.Request) {
	logID := chi.URLParam(r, "logId")
	if logID == "" {
		sendError(w, http.StatusBadRequest, "logId is required")
		return
	}

	if err := h.service.DeleteLog(r.Context(), logID); err != nil {
		log.Error().Err(err).Str("log_id", logID).Msg("error deleting log entry")
		sendError(w, http.StatusInternalServerError, "error deleting log entry")
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{"message": "log entry deleted"})
}
