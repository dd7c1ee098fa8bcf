package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/filevault/filevault/internal/ctxkeys"
	"github.com/filevault/filevault/internal/repository"
	"github.com/filevault/filevault/internal/service"
)

type ShareHandler struct {
	shareService *service.ShareService
}

func NewShareHandler(shareService *service.ShareService) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
	}
}

// Create mints a share link. The route runs behind the auth gate, so the
// creator identity comes from the verified claims.
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileID     int64  `json:"fileId"`
		IsPublic   bool   `json:"isPublic"`
		SharedWith any    `json:"sharedWith"` // array of emails or comma-separated string
		ExpiresAt  string `json:"expiresAt"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil || req.FileID == 0 {
		respondError(w, http.StatusBadRequest, "fileId is required")
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, "expiresAt must be RFC 3339")
			return
		}
		expiresAt = &t
	}

	user := ctxkeys.User(r.Context())

	link, err := h.shareService.Create(req.FileID, req.IsPublic, req.SharedWith, user.Email, expiresAt)
	if err != nil {
		slog.Error("failed to create share link", "error", err, "file_id", req.FileID)
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Failed to create share link",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"link":    link,
	})
}

// Access resolves a share token to the shared file's metadata. The actual
// byte retrieval is a follow-up request using the returned storage path.
func (h *ShareHandler) Access(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	email := ""
	if user != nil {
		email = user.Email
	}

	shared, err := h.shareService.Resolve(r.PathValue("token"), email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrShareNotFound):
			respondError(w, http.StatusNotFound, "Invalid or expired link")
		case errors.Is(err, service.ErrShareExpired):
			respondError(w, http.StatusForbidden, "Link expired")
		case errors.Is(err, service.ErrShareForbidden):
			respondError(w, http.StatusForbidden, "You do not have permission")
		default:
			slog.Error("failed to resolve share", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to fetch shared file")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"fileName":    shared.FileName,
		"mimeType":    shared.MimeType,
		"storagePath": shared.StoragePath,
	})
}
