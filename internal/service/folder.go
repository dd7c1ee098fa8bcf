package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/filevault/filevault/internal/model"
	"github.com/filevault/filevault/internal/repository"
	"github.com/filevault/filevault/internal/validation"
)

var (
	ErrFolderNameRequired = errors.New("folder name is required")
)

type FolderService struct {
	folderRepo repository.FolderRepository
	fileRepo   repository.FileRepository
}

func NewFolderService(folderRepo repository.FolderRepository, fileRepo repository.FileRepository) *FolderService {
	return &FolderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
	}
}

func (s *FolderService) Create(name string, parentID *int64) (*model.Folder, error) {
	err := validation.ValidateName(name)
	if err != nil {
		return nil, ErrFolderNameRequired
	}

	folder := &model.Folder{
		Name:      name,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}

	err = s.folderRepo.Create(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	return folder, nil
}

// Files returns the non-deleted files inside a folder.
func (s *FolderService) Files(folderID int64) ([]*model.FileSummary, error) {
	return s.fileRepo.SummariesByFolder(folderID)
}

// List returns every folder, trashed ones included, newest first.
func (s *FolderService) List() ([]*model.Folder, error) {
	return s.folderRepo.All()
}

// Copy clones the folder row with a " (Copy)" suffix under the same parent.
// Contents are not duplicated.
func (s *FolderService) Copy(id int64) (*model.Folder, error) {
	folder, err := s.folderRepo.ByID(id)
	if err != nil {
		return nil, err
	}

	clone := &model.Folder{
		Name:      folder.Name + " (Copy)",
		ParentID:  folder.ParentID,
		IsDeleted: false,
		CreatedAt: time.Now().UTC(),
	}

	err = s.folderRepo.Create(clone)
	if err != nil {
		return nil, fmt.Errorf("failed to copy folder: %w", err)
	}

	return clone, nil
}

func (s *FolderService) Rename(id int64, newName string) error {
	return s.folderRepo.Rename(id, newName)
}

// SoftDelete flags the folder only. Children and contained files keep their
// state; trash does not cascade.
func (s *FolderService) SoftDelete(id int64) error {
	return s.folderRepo.SetDeleted(id, true)
}

func (s *FolderService) Restore(id int64) error {
	return s.folderRepo.SetDeleted(id, false)
}

func (s *FolderService) ListTrash() ([]*model.Folder, error) {
	return s.folderRepo.ListTrash()
}

// EmptyTrash hard-deletes every flagged folder and reports the count.
func (s *FolderService) EmptyTrash() (int64, error) {
	return s.folderRepo.EmptyTrash()
}
