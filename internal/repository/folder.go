package repository

import (
	"database/sql"
	"errors"

	"github.com/filevault/filevault/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrFolderNotFound = errors.New("folder not found")
)

type FolderRepository interface {
	Create(folder *model.Folder) error
	ByID(id int64) (*model.Folder, error)
	Exists(id int64) (bool, error)
	All() ([]*model.Folder, error)
	ListTrash() ([]*model.Folder, error)
	Rename(id int64, newName string) error
	SetDeleted(id int64, deleted bool) error
	EmptyTrash() (int64, error)
}

type folderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) FolderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) Create(folder *model.Folder) error {
	query := `INSERT INTO folders (name, parent_id, is_deleted, created_at) VALUES ($1, $2, $3, $4)`

	res, err := r.db.Exec(query, folder.Name, folder.ParentID, folder.IsDeleted, folder.CreatedAt)
	if err != nil {
		return err
	}

	folder.ID, err = res.LastInsertId()
	return err
}

func (r *folderRepository) ByID(id int64) (*model.Folder, error) {
	folder := &model.Folder{}
	query := `SELECT * FROM folders WHERE id = $1`

	err := r.db.Get(folder, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrFolderNotFound
	}

	return folder, err
}

func (r *folderRepository) Exists(id int64) (bool, error) {
	var n int
	query := `SELECT COUNT(1) FROM folders WHERE id = $1`

	err := r.db.Get(&n, query, id)
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (r *folderRepository) All() ([]*model.Folder, error) {
	var folders []*model.Folder
	query := `SELECT * FROM folders ORDER BY created_at DESC`

	err := r.db.Select(&folders, query)
	if err != nil {
		return nil, err
	}

	return folders, nil
}

func (r *folderRepository) ListTrash() ([]*model.Folder, error) {
	var folders []*model.Folder
	query := `SELECT * FROM folders WHERE is_deleted = 1`

	err := r.db.Select(&folders, query)
	if err != nil {
		return nil, err
	}

	return folders, nil
}

func (r *folderRepository) Rename(id int64, newName string) error {
	query := `UPDATE folders SET name = $1 WHERE id = $2`

	res, err := r.db.Exec(query, newName, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFolderNotFound
	}

	return nil
}

func (r *folderRepository) SetDeleted(id int64, deleted bool) error {
	query := `UPDATE folders SET is_deleted = $1 WHERE id = $2`

	res, err := r.db.Exec(query, deleted, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFolderNotFound
	}

	return nil
}

// EmptyTrash hard-deletes every flagged folder. Deletion is not recursive:
// children keep their parent_id and are orphaned.
func (r *folderRepository) EmptyTrash() (int64, error) {
	query := `DELETE FROM folders WHERE is_deleted = 1`

	res, err := r.db.Exec(query)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
