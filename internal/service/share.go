package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/filevault/filevault/internal/model"
	"github.com/filevault/filevault/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrShareExpired   = errors.New("link expired")
	ErrShareForbidden = errors.New("you do not have permission")
)

type ShareService struct {
	shareRepo repository.ShareRepository
	appURL    string
}

func NewShareService(shareRepo repository.ShareRepository, appURL string) *ShareService {
	return &ShareService{
		shareRepo: shareRepo,
		appURL:    appURL,
	}
}

// Create mints an opaque share token for a file and returns the absolute link
// embedding it. sharedWith may arrive as a JSON array of emails or a single
// comma-separated string; both are stored comma-joined.
func (s *ShareService) Create(fileID int64, isPublic bool, sharedWith any, createdBy string, expiresAt *time.Time) (string, error) {
	token := uuid.New().String()

	share := &model.Share{
		ShareToken: token,
		FileID:     fileID,
		IsPublic:   isPublic,
		SharedWith: normalizeSharedWith(sharedWith),
		CreatedBy:  createdBy,
		ExpiresAt:  expiresAt,
		CreatedAt:  time.Now().UTC(),
	}

	err := s.shareRepo.Create(share)
	if err != nil {
		return "", fmt.Errorf("failed to create share link: %w", err)
	}

	return fmt.Sprintf("%s/share/%s", strings.TrimSuffix(s.appURL, "/"), token), nil
}

// Resolve checks a share token and returns the shared file's metadata (name,
// mime type, storage key), never the bytes. Expiry is checked at access time.
// Private shares require the caller's email to appear in the allow-list.
func (s *ShareService) Resolve(token, requesterEmail string) (*model.SharedFile, error) {
	shared, err := s.shareRepo.ByToken(token)
	if err != nil {
		return nil, err
	}

	if shared.ExpiresAt != nil && time.Now().After(*shared.ExpiresAt) {
		return nil, ErrShareExpired
	}

	if !shared.IsPublic {
		if requesterEmail == "" {
			return nil, ErrShareForbidden
		}

		allowed := false
		for _, email := range splitSharedWith(shared.SharedWith) {
			if email == requesterEmail {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, ErrShareForbidden
		}
	}

	return shared, nil
}

// normalizeSharedWith flattens a decoded JSON value (array of emails or a
// comma-separated string) into the stored comma-joined form.
func normalizeSharedWith(v any) *string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return &val
	case []string:
		if len(val) == 0 {
			return nil
		}
		joined := strings.Join(val, ",")
		return &joined
	case []any:
		emails := make([]string, 0, len(val))
		for _, item := range val {
			email, ok := item.(string)
			if ok {
				emails = append(emails, email)
			}
		}
		if len(emails) == 0 {
			return nil
		}
		joined := strings.Join(emails, ",")
		return &joined
	default:
		return nil
	}
}

func splitSharedWith(s *string) []string {
	if s == nil {
		return nil
	}

	parts := strings.Split(*s, ",")
	emails := make([]string, 0, len(parts))
	for _, part := range parts {
		email := strings.TrimSpace(part)
		if email != "" {
			emails = append(emails, email)
		}
	}
	return emails
}
