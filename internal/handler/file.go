package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/filevault/filevault/internal/repository"
	"github.com/filevault/filevault/internal/service"
)

// maxUploadMemory bounds the multipart form buffer; larger files spill to disk.
const maxUploadMemory = 32 << 20

type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
	}
}

// parseFolderID maps the wire form of a folder reference to a nullable id.
// "" and "root" both mean the root level.
func parseFolderID(s string) (*int64, error) {
	if s == "" || s == "root" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(maxUploadMemory)
	if err != nil {
		respondError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	parentID, err := parseFolderID(r.FormValue("parentId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid parent folder")
		return
	}

	uploaded, err := h.fileService.Upload(files, parentID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidParentFolder) {
			respondError(w, http.StatusBadRequest, "Invalid parent folder")
			return
		}
		slog.Error("upload failed", "error", err, "uploaded", len(uploaded))
		respondError(w, http.StatusBadRequest, "Upload failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"uploaded": uploaded})
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	folderID, err := parseFolderID(r.URL.Query().Get("folderId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid folder id")
		return
	}

	files, err := h.fileService.List(folderID)
	if err != nil {
		slog.Error("failed to list files", "error", err)
		respondError(w, http.StatusBadRequest, "Failed to fetch files")
		return
	}

	respondJSON(w, http.StatusOK, files)
}

func (h *FileHandler) Trash(w http.ResponseWriter, r *http.Request) {
	files, err := h.fileService.ListTrash()
	if err != nil {
		slog.Error("failed to list trash", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch trash files")
		return
	}

	respondJSON(w, http.StatusOK, files)
}

func (h *FileHandler) Preview(w http.ResponseWriter, r *http.Request) {
	h.serveBytes(w, r, false)
}

func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.serveBytes(w, r, true)
}

// serveBytes streams a file's stored bytes with its recorded mime type.
// Download mode adds a Content-Disposition attachment with the display name.
func (h *FileHandler) serveBytes(w http.ResponseWriter, r *http.Request, asAttachment bool) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "File not found in DB")
		return
	}

	file, body, err := h.fileService.Open(id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrFileNotFound):
			respondError(w, http.StatusNotFound, "File not found in DB")
		case errors.Is(err, service.ErrObjectNotFound):
			respondError(w, http.StatusNotFound, "File not found in storage")
		default:
			slog.Error("failed to open file", "error", err, "file_id", id)
			respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	defer func() { _ = body.Close() }()

	if asAttachment {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.DisplayName))
	}
	w.Header().Set("Content-Type", file.MimeType)

	_, err = io.Copy(w, body)
	if err != nil {
		slog.Warn("file stream interrupted", "error", err, "file_id", id)
	}
}

func (h *FileHandler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	count, err := h.fileService.EmptyTrash()
	if err != nil {
		slog.Error("failed to empty file trash", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to empty file trash")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":      "Trash emptied",
		"deletedCount": count,
	})
}

func (h *FileHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}

	var req struct {
		NewName string `json:"newName"`
	}
	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil || req.NewName == "" {
		respondError(w, http.StatusBadRequest, "New name is required")
		return
	}

	err = h.fileService.Rename(id, req.NewName)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			respondError(w, http.StatusNotFound, "File not found")
			return
		}
		slog.Error("failed to rename file", "error", err, "file_id", id)
		respondError(w, http.StatusBadRequest, "Failed to rename file")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "File renamed successfully"})
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}

	err = h.fileService.SoftDelete(id)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			respondError(w, http.StatusNotFound, "File not found")
			return
		}
		slog.Error("failed to trash file", "error", err, "file_id", id)
		respondError(w, http.StatusBadRequest, "Failed to move file to trash")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "File moved to trash"})
}

func (h *FileHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}

	err = h.fileService.Restore(id)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			respondError(w, http.StatusNotFound, "File not found")
			return
		}
		slog.Error("failed to restore file", "error", err, "file_id", id)
		respondError(w, http.StatusBadRequest, "Failed to restore file")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "File restored successfully"})
}

func (h *FileHandler) Copy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}

	clone, err := h.fileService.Copy(id)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			respondError(w, http.StatusNotFound, "File not found")
			return
		}
		slog.Error("failed to copy file", "error", err, "file_id", id)
		respondError(w, http.StatusBadRequest, "Failed to copy file")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "File copied successfully",
		"file":    clone,
	})
}

func (h *FileHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.fileService.Search(r.URL.Query().Get("q"))
	if err != nil {
		slog.Error("search failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, results)
}
