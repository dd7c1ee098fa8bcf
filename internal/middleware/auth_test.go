package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filevault/filevault/internal/ctxkeys"
	"github.com/filevault/filevault/internal/model"
	"github.com/filevault/filevault/internal/service"
)

func TestRequireAuth(t *testing.T) {
	authService := service.NewAuthService(nil, nil, "test-secret", time.Hour, false)

	token, err := authService.GenerateJWT(&model.User{ID: 7, Email: "alice@example.com"})
	require.NoError(t, err)

	var gotClaims *service.Claims
	next := func(w http.ResponseWriter, r *http.Request) {
		gotClaims = ctxkeys.User(r.Context())
		w.WriteHeader(http.StatusOK)
	}
	gated := RequireAuth(authService)(next)

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bearer header",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantStatus: http.StatusOK,
		},
		{
			name: "session cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: service.SessionCookieName, Value: token})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "no token",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Authorization token missing",
		},
		{
			name:       "garbage token",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer not-a-jwt") },
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Invalid or expired token",
		},
		{
			name:       "wrong scheme ignored",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) },
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Authorization token missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClaims = nil
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)

			rec := httptest.NewRecorder()
			gated(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, gotClaims)
				assert.Equal(t, int64(7), gotClaims.ID)
				assert.Equal(t, "alice@example.com", gotClaims.Email)
			} else {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
				assert.Nil(t, gotClaims)
			}
		})
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	issuer := service.NewAuthService(nil, nil, "test-secret", -time.Minute, false)
	verifier := service.NewAuthService(nil, nil, "test-secret", time.Hour, false)

	token, err := issuer.GenerateJWT(&model.User{ID: 1, Email: "a@x.com"})
	require.NoError(t, err)

	gated := RequireAuth(verifier)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	gated(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired token")
}
