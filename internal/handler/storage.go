package handler

import (
	"log/slog"
	"net/http"

	"github.com/filevault/filevault/internal/service"
)

type StorageHandler struct {
	storageService *service.StorageService
}

func NewStorageHandler(storageService *service.StorageService) *StorageHandler {
	return &StorageHandler{
		storageService: storageService,
	}
}

func (h *StorageHandler) Info(w http.ResponseWriter, r *http.Request) {
	usage, err := h.storageService.Usage()
	if err != nil {
		slog.Error("failed to fetch storage info", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch storage info")
		return
	}

	respondJSON(w, http.StatusOK, usage)
}
