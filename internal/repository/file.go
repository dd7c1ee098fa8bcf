package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/filevault/filevault/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

type FileRepository interface {
	Create(file *model.File) error
	ByID(id int64) (*model.File, error)
	ListByFolder(folderID *int64) ([]*model.File, error)
	ListTrash() ([]*model.File, error)
	SummariesByFolder(folderID int64) ([]*model.FileSummary, error)
	Rename(id int64, newName string) error
	SetDeleted(id int64, deleted bool) error
	EmptyTrash() (int64, error)
	Search(query string, limit int) ([]*model.FileSummary, error)
	SumSizes() (int64, error)
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(file *model.File) error {
	query := `INSERT INTO files (storage_path, display_name, uploaded_by, size, mime_type, folder_id, is_deleted, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	res, err := r.db.Exec(query,
		file.StoragePath,
		file.DisplayName,
		file.UploadedBy,
		file.Size,
		file.MimeType,
		file.FolderID,
		file.IsDeleted,
		file.CreatedAt,
		file.UpdatedAt,
	)
	if err != nil {
		return err
	}

	file.ID, err = res.LastInsertId()
	return err
}

func (r *fileRepository) ByID(id int64) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE id = $1`

	err := r.db.Get(file, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}

	return file, err
}

// ListByFolder returns non-deleted files in the given folder, ordered by
// ascending id. A nil folderID selects root files (folder_id IS NULL).
func (r *fileRepository) ListByFolder(folderID *int64) ([]*model.File, error) {
	var files []*model.File
	var err error

	if folderID == nil {
		query := `SELECT * FROM files WHERE is_deleted = 0 AND folder_id IS NULL ORDER BY id ASC`
		err = r.db.Select(&files, query)
	} else {
		query := `SELECT * FROM files WHERE is_deleted = 0 AND folder_id = $1 ORDER BY id ASC`
		err = r.db.Select(&files, query, *folderID)
	}
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) ListTrash() ([]*model.File, error) {
	var files []*model.File
	query := `SELECT * FROM files WHERE is_deleted = 1 ORDER BY updated_at DESC`

	err := r.db.Select(&files, query)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) SummariesByFolder(folderID int64) ([]*model.FileSummary, error) {
	var files []*model.FileSummary
	query := `SELECT id, display_name, mime_type, size, created_at FROM files WHERE folder_id = $1 AND is_deleted = 0`

	err := r.db.Select(&files, query, folderID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) Rename(id int64, newName string) error {
	query := `UPDATE files SET display_name = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.Exec(query, newName, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFileNotFound
	}

	return nil
}

func (r *fileRepository) SetDeleted(id int64, deleted bool) error {
	query := `UPDATE files SET is_deleted = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.Exec(query, deleted, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFileNotFound
	}

	return nil
}

// EmptyTrash permanently removes all soft-deleted rows and reports how many
// were removed. Storage objects are not touched here.
func (r *fileRepository) EmptyTrash() (int64, error) {
	query := `DELETE FROM files WHERE is_deleted = 1`

	res, err := r.db.Exec(query)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *fileRepository) Search(query string, limit int) ([]*model.FileSummary, error) {
	var files []*model.FileSummary
	// LOWER on both sides keeps the match case-insensitive across drivers
	q := `SELECT id, display_name, mime_type, size, created_at FROM files
	      WHERE is_deleted = 0 AND LOWER(display_name) LIKE '%' || LOWER($1) || '%'
	      ORDER BY created_at DESC LIMIT $2`

	err := r.db.Select(&files, q, query, limit)
	if err != nil {
		return nil, err
	}

	return files, nil
}

// SumSizes totals the size column across every row, soft-deleted included.
func (r *fileRepository) SumSizes() (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(size), 0) FROM files`

	err := r.db.Get(&total, query)
	return total, err
}
