package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/filevault/filevault/internal/repository"
	"github.com/filevault/filevault/internal/service"
)

type FolderHandler struct {
	folderService *service.FolderService
}

func NewFolderHandler(folderService *service.FolderService) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
	}
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		ParentID *int64 `json:"parent_id"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	folder, err := h.folderService.Create(req.Name, req.ParentID)
	if err != nil {
		if errors.Is(err, service.ErrFolderNameRequired) {
			respondError(w, http.StatusBadRequest, "All fields are required")
			return
		}
		slog.Error("failed to create folder", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create folder")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Folder created successfully",
		"folder":  folder,
	})
}

// Files lists the non-deleted files inside a folder.
func (h *FolderHandler) Files(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Folder not found")
		return
	}

	files, err := h.folderService.Files(id)
	if err != nil {
		slog.Error("failed to list folder files", "error", err, "folder_id", id)
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, files)
}

func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folderService.List()
	if err != nil {
		slog.Error("failed to list folders", "error", err)
		respondError(w, http.StatusBadRequest, "Failed to fetch folders")
		return
	}

	respondJSON(w, http.StatusOK, folders)
}

func (h *FolderHandler) Copy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Folder not found")
		return
	}

	clone, err := h.folderService.Copy(id)
	if err != nil {
		if errors.Is(err, repository.ErrFolderNotFound) {
			respondError(w, http.StatusNotFound, "Folder not found")
			return
		}
		slog.Error("failed to copy folder", "error", err, "folder_id", id)
		respondError(w, http.StatusInternalServerError, "Failed to copy folder")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"folder": clone})
}

func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Folder not found")
		return
	}

	err = h.folderService.SoftDelete(id)
	if err != nil {
		if errors.Is(err, repository.ErrFolderNotFound) {
			respondError(w, http.StatusNotFound, "Folder not found")
			return
		}
		slog.Error("failed to trash folder", "error", err, "folder_id", id)
		respondError(w, http.StatusInternalServerError, "Failed to move folder to trash")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Folder moved to trash"})
}

func (h *FolderHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Folder not found")
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

	err = h.folderService.Rename(id, req.NewName)
	if err != nil {
		if errors.Is(err, repository.ErrFolderNotFound) {
			respondError(w, http.StatusNotFound, "Folder not found")
			return
		}
		slog.Error("failed to rename folder", "error", err, "folder_id", id)
		respondError(w, http.StatusInternalServerError, "Failed to rename folder")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Folder renamed successfully"})
}

func (h *FolderHandler) Trash(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folderService.ListTrash()
	if err != nil {
		slog.Error("failed to list folder trash", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch trash folders")
		return
	}

	respondJSON(w, http.StatusOK, folders)
}

func (h *FolderHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Folder not found")
		return
	}

	err = h.folderService.Restore(id)
	if err != nil {
		if errors.Is(err, repository.ErrFolderNotFound) {
			respondError(w, http.StatusNotFound, "Folder not found")
			return
		}
		slog.Error("failed to restore folder", "error", err, "folder_id", id)
		respondError(w, http.StatusInternalServerError, "Failed to restore folder")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Folder restored successfully"})
}

func (h *FolderHandler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	count, err := h.folderService.EmptyTrash()
	if err != nil {
		slog.Error("failed to empty folder trash", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to empty folder trash")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":      "All trashed folders deleted permanently",
		"deletedCount": count,
	})
}
