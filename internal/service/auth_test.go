package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filevault/filevault/internal/model"
	"github.com/filevault/filevault/internal/repository"
)

type fakeUserRepo struct {
	users  map[string]*model.User // keyed by email
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	if _, exists := r.users[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) ByID(id int64) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) ByEmail(email string) (*model.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) All() ([]*model.User, error) {
	users := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	return users, nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	for email, u := range r.users {
		if u.ID == user.ID {
			delete(r.users, email)
			r.users[user.Email] = user
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (r *fakeUserRepo) Delete(id int64) error {
	for email, u := range r.users {
		if u.ID == id {
			delete(r.users, email)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func newTestAuthService(repo repository.UserRepository) *AuthService {
	email := NewEmailService("", "noreply@example.com", "FileVault", true)
	return NewAuthService(repo, email, "test-secret", time.Hour, false)
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		phone    string
		dob      string
		wantErr  error
	}{
		{name: "valid", userName: "Alice", email: "Alice@Example.com", password: "hunter2hunter2", phone: "123456", dob: "1990-01-01"},
		{name: "missing name", email: "a@x.com", password: "pw", phone: "1", dob: "1990-01-01", wantErr: ErrMissingFields},
		{name: "missing password", userName: "A", email: "a@x.com", phone: "1", dob: "1990-01-01", wantErr: ErrMissingFields},
		{name: "bad email", userName: "A", email: "not-an-email", password: "pw", phone: "1", dob: "1990-01-01", wantErr: ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestAuthService(newFakeUserRepo())

			user, err := svc.Signup(tt.userName, tt.email, tt.password, tt.phone, tt.dob)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			// Email is normalized, password never stored verbatim.
			assert.Equal(t, "alice@example.com", user.Email)
			assert.NotEqual(t, tt.password, user.PasswordHash)
			assert.NoError(t, svc.ComparePassword(tt.password, user.PasswordHash))
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())

	_, err := svc.Signup("Alice", "alice@example.com", "hunter2hunter2", "123", "1990-01-01")
	require.NoError(t, err)

	_, err = svc.Signup("Other Alice", "ALICE@example.com", "different", "456", "1991-02-02")
	require.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	_, err := svc.Signup("Alice", "alice@example.com", "hunter2hunter2", "123", "1990-01-01")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Login("Alice@Example.com", "hunter2hunter2")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login("alice@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email looks identical", func(t *testing.T) {
		_, err := svc.Login("nobody@example.com", "hunter2hunter2")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Login("", "")
		require.ErrorIs(t, err, ErrMissingFields)
	})
}

func TestJWTRoundTrip(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	user := &model.User{ID: 42, Email: "alice@example.com"}

	token, err := svc.GenerateJWT(user)
	require.NoError(t, err)

	claims, err := svc.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.ID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestJWTWrongSecret(t *testing.T) {
	issuer := newTestAuthService(newFakeUserRepo())
	verifier := NewAuthService(newFakeUserRepo(), nil, "other-secret", time.Hour, false)

	token, err := issuer.GenerateJWT(&model.User{ID: 1, Email: "a@x.com"})
	require.NoError(t, err)

	_, err = verifier.VerifyJWT(token)
	require.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), nil, "test-secret", -time.Minute, false)

	token, err := svc.GenerateJWT(&model.User{ID: 1, Email: "a@x.com"})
	require.NoError(t, err)

	_, err = svc.VerifyJWT(token)
	require.Error(t, err)
}

func TestSessionCookie(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())

	rec := httptest.NewRecorder()
	svc.SetSessionCookie(rec, "signed-token")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Equal(t, "signed-token", c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, int(time.Hour.Seconds()), c.MaxAge)
	assert.False(t, c.Secure) // not production

	rec = httptest.NewRecorder()
	svc.ClearSessionCookie(rec)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].Expires.Before(time.Now()))
}
