package routes

import (
	"net/http"

	"github.com/filevault/filevault/internal/app"
	"github.com/filevault/filevault/internal/handler"
	"github.com/filevault/filevault/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	file := handler.NewFileHandler(app.FileService)
	folder := handler.NewFolderHandler(app.FolderService)
	share := handler.NewShareHandler(app.ShareService)
	storage := handler.NewStorageHandler(app.StorageService)
	user := handler.NewUserHandler(app.AuthService, app.UserRepository)

	mux := http.NewServeMux()

	// Auth flow (rate limited)
	rateLimiter := middleware.RateLimitAuth()
	requireAuth := middleware.RequireAuth(app.AuthService)

	// ============================================================================
	// AUTH
	// ============================================================================

	mux.HandleFunc("POST /signup", rateLimiter(auth.Signup))
	mux.HandleFunc("POST /login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /logout", auth.Logout)
	mux.HandleFunc("GET /me", requireAuth(auth.Me))
	mux.HandleFunc("GET /secure-data", requireAuth(user.Secure))

	// ============================================================================
	// FILES
	// ============================================================================
	//
	// Access policy: only /me, /secure-data and the share routes sit behind the
	// token check. File, folder, storage and user admin routes are open; there
	// are no per-user ownership checks anywhere. Callers are expected to front
	// this service with their own perimeter.

	mux.HandleFunc("POST /upload", file.Upload)
	mux.HandleFunc("GET /files", file.List)
	mux.HandleFunc("GET /files/search", file.Search)
	mux.HandleFunc("GET /files/trash", file.Trash)
	mux.HandleFunc("DELETE /files/trash/empty", file.EmptyTrash)
	mux.HandleFunc("GET /preview/{id}", file.Preview)
	mux.HandleFunc("GET /files/{id}/download", file.Download)
	mux.HandleFunc("PUT /files/{id}/rename", file.Rename)
	mux.HandleFunc("PUT /files/{id}/delete", file.Delete)
	mux.HandleFunc("PUT /files/{id}/restore", file.Restore)
	mux.HandleFunc("POST /files/{id}/copy", file.Copy)

	// ============================================================================
	// FOLDERS
	// ============================================================================

	mux.HandleFunc("POST /folders", folder.Create)
	mux.HandleFunc("GET /folders", folder.List)
	mux.HandleFunc("GET /folders/trash", folder.Trash)
	mux.HandleFunc("DELETE /folders/trash/empty", folder.EmptyTrash)
	mux.HandleFunc("GET /folders/{id}/files", folder.Files)
	mux.HandleFunc("POST /folders/{id}/copy", folder.Copy)
	mux.HandleFunc("PUT /folders/{id}/delete", folder.Delete)
	mux.HandleFunc("PUT /folders/{id}/rename", folder.Rename)
	mux.HandleFunc("PUT /folders/{id}/restore", folder.Restore)

	// ============================================================================
	// SHARING
	// ============================================================================

	mux.HandleFunc("POST /share", requireAuth(share.Create))
	mux.HandleFunc("GET /share/{token}", requireAuth(share.Access))

	// ============================================================================
	// STORAGE / USERS
	// ============================================================================

	mux.HandleFunc("GET /storage/info", storage.Info)

	mux.HandleFunc("GET /users", user.List)
	mux.HandleFunc("PUT /users/{id}", user.Update)
	mux.HandleFunc("DELETE /users/{id}", user.Delete)

	// Global middleware - executed in order (top to bottom)
	h := middleware.Chain(
		mux,
		middleware.CORS(app.Cfg.CORSOrigin), // CORS must be first so errors still carry headers
		middleware.RequestLogging,
	)

	return h
}
