package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/filevault/filevault/internal/model"
	"github.com/filevault/filevault/internal/repository"
	"github.com/filevault/filevault/internal/storage"
)

var (
	ErrNoFiles             = errors.New("no files uploaded")
	ErrInvalidParentFolder = errors.New("invalid parent folder")
	ErrObjectNotFound      = errors.New("file not found in storage")
)

// searchLimit caps name-search results.
const searchLimit = 20

// uploadPrefix is the key namespace for uploaded objects.
const uploadPrefix = "uploads/"

type FileService struct {
	fileRepo   repository.FileRepository
	folderRepo repository.FolderRepository
	storage    storage.Storage
}

func NewFileService(fileRepo repository.FileRepository, folderRepo repository.FolderRepository, storage storage.Storage) *FileService {
	return &FileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		storage:    storage,
	}
}

// Upload stores each file in object storage under a timestamp-prefixed key and
// inserts its metadata row. The target folder is checked before any byte is
// written. Files are processed sequentially and the loop aborts on the first
// failure; rows inserted by earlier iterations are kept, not rolled back.
// The returned slice holds whatever succeeded before the abort point.
func (s *FileService) Upload(files []*multipart.FileHeader, parentID *int64) ([]*model.File, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	if parentID != nil {
		exists, err := s.folderRepo.Exists(*parentID)
		if err != nil {
			return nil, fmt.Errorf("failed to check parent folder: %w", err)
		}
		if !exists {
			return nil, ErrInvalidParentFolder
		}
	}

	uploaded := make([]*model.File, 0, len(files))

	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			return uploaded, fmt.Errorf("failed to open upload %q: %w", header.Filename, err)
		}

		key := fmt.Sprintf("%s%d-%s", uploadPrefix, time.Now().UnixMilli(), header.Filename)
		contentType := header.Header.Get("Content-Type")

		err = s.storage.Save(key, f, contentType)
		_ = f.Close()
		if err != nil {
			return uploaded, fmt.Errorf("failed to store %q: %w", header.Filename, err)
		}

		now := time.Now().UTC()
		file := &model.File{
			StoragePath: key,
			DisplayName: header.Filename,
			Size:        header.Size,
			MimeType:    contentType,
			FolderID:    parentID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		err = s.fileRepo.Create(file)
		if err != nil {
			// The object was already written; remove it so the abort does
			// not leave bytes without a row.
			delErr := s.storage.Delete(key)
			if delErr != nil {
				slog.Error("failed to delete object during upload cleanup", "error", delErr, "key", key)
			}
			return uploaded, fmt.Errorf("failed to create file record: %w", err)
		}

		uploaded = append(uploaded, file)
	}

	return uploaded, nil
}

// List returns non-deleted files in a folder, ascending by id. A nil folder
// selects root.
func (s *FileService) List(folderID *int64) ([]*model.File, error) {
	return s.fileRepo.ListByFolder(folderID)
}

// ListTrash returns soft-deleted files, most recently touched first.
func (s *FileService) ListTrash() ([]*model.File, error) {
	return s.fileRepo.ListTrash()
}

func (s *FileService) Rename(id int64, newName string) error {
	return s.fileRepo.Rename(id, newName)
}

func (s *FileService) SoftDelete(id int64) error {
	return s.fileRepo.SetDeleted(id, true)
}

func (s *FileService) Restore(id int64) error {
	return s.fileRepo.SetDeleted(id, false)
}

// EmptyTrash permanently removes all soft-deleted rows and reports the count.
// Storage bytes for those files are not reclaimed.
func (s *FileService) EmptyTrash() (int64, error) {
	return s.fileRepo.EmptyTrash()
}

// Open fetches a file's metadata and a reader over its stored bytes. The
// caller must close the reader.
func (s *FileService) Open(id int64) (*model.File, io.ReadCloser, error) {
	file, err := s.fileRepo.ByID(id)
	if err != nil {
		return nil, nil, err
	}

	body, err := s.storage.Open(file.StoragePath)
	if err != nil {
		slog.Warn("stored object missing", "key", file.StoragePath, "file_id", id, "error", err)
		return nil, nil, ErrObjectNotFound
	}

	return file, body, nil
}

// Copy duplicates the storage object under a fresh timestamped key and clones
// the metadata row. The clone is never born deleted.
func (s *FileService) Copy(id int64) (*model.File, error) {
	original, err := s.fileRepo.ByID(id)
	if err != nil {
		return nil, err
	}

	newKey := fmt.Sprintf("%s%d-%s", uploadPrefix, time.Now().UnixMilli(), original.DisplayName)

	err = s.storage.Copy(original.StoragePath, newKey)
	if err != nil {
		return nil, fmt.Errorf("failed to copy object: %w", err)
	}

	now := time.Now().UTC()
	clone := &model.File{
		StoragePath: newKey,
		DisplayName: original.DisplayName,
		UploadedBy:  original.UploadedBy,
		Size:        original.Size,
		MimeType:    original.MimeType,
		FolderID:    original.FolderID,
		IsDeleted:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.fileRepo.Create(clone)
	if err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	return clone, nil
}

// Search matches display names case-insensitively among non-deleted files,
// newest first, capped at 20 results. A blank query returns an empty result
// without touching the store.
func (s *FileService) Search(query string) ([]*model.FileSummary, error) {
	if strings.TrimSpace(query) == "" {
		return []*model.FileSummary{}, nil
	}

	return s.fileRepo.Search(query, searchLimit)
}
