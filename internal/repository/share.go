package repository

import (
	"database/sql"
	"errors"

	"github.com/filevault/filevault/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrShareNotFound = errors.New("share not found")
)

type ShareRepository interface {
	Create(share *model.Share) error
	ByToken(token string) (*model.SharedFile, error)
}

type shareRepository struct {
	db *sqlx.DB
}

func NewShareRepository(db *sqlx.DB) ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) Create(share *model.Share) error {
	query := `INSERT INTO shares (share_token, file_id, is_public, shared_with, created_by, expires_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	res, err := r.db.Exec(query,
		share.ShareToken,
		share.FileID,
		share.IsPublic,
		share.SharedWith,
		share.CreatedBy,
		share.ExpiresAt,
		share.CreatedAt,
	)
	if err != nil {
		return err
	}

	share.ID, err = res.LastInsertId()
	return err
}

// ByToken looks up a share joined with the display name, storage key and mime
// type of the file it points at.
func (r *shareRepository) ByToken(token string) (*model.SharedFile, error) {
	shared := &model.SharedFile{}
	query := `SELECT s.id, s.share_token, s.file_id, s.is_public, s.shared_with, s.created_by, s.expires_at, s.created_at,
	                 f.display_name, f.mime_type, f.storage_path
	          FROM shares s
	          JOIN files f ON f.id = s.file_id
	          WHERE s.share_token = $1`

	err := r.db.Get(shared, query, token)
	if err == sql.ErrNoRows {
		return nil, ErrShareNotFound
	}

	return shared, err
}
