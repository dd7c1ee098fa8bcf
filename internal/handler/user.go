package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/filevault/filevault/internal/ctxkeys"
	"github.com/filevault/filevault/internal/repository"
	"github.com/filevault/filevault/internal/service"
)

// UserHandler exposes the administrative user operations. List, Update and
// Delete run without the auth gate and without ownership checks, mirroring
// the access policy documented in routes.SetupRoutes.
type UserHandler struct {
	authService *service.AuthService
	userRepo    repository.UserRepository
}

func NewUserHandler(authService *service.AuthService, userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{
		authService: authService,
		userRepo:    userRepo,
	}
}

// Secure is a gated probe endpoint echoing the verified identity.
func (h *UserHandler) Secure(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "You are authorized!",
		"user":    ctxkeys.User(r.Context()),
	})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.All()
	if err != nil {
		slog.Error("failed to list users", "error", err)
		respondError(w, http.StatusBadRequest, "Failed to fetch users")
		return
	}

	respondJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
		DOB      string `json:"dob"`
	}
	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Phone == "" || req.DOB == "" {
		respondError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	user, err := h.userRepo.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("failed to get user", "error", err, "user_id", id)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err, "user_id", id)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user.Name = req.Name
	user.Email = req.Email
	user.PasswordHash = hash
	user.Phone = req.Phone
	user.DOB = req.DOB

	err = h.userRepo.Update(user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, repository.ErrDuplicateEmail):
			respondError(w, http.StatusConflict, "Email already in use")
		default:
			slog.Error("failed to update user", "error", err, "user_id", id)
			respondError(w, http.StatusBadRequest, "Failed to update user")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "User updated successfully"})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	err = h.userRepo.Delete(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("failed to delete user", "error", err, "user_id", id)
		respondError(w, http.StatusBadRequest, "Failed to delete user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
