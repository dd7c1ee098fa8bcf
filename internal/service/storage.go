package service

import (
	"github.com/filevault/filevault/internal/repository"
)

// StorageUsage reports bytes consumed against the fixed capacity.
type StorageUsage struct {
	Used  int64 `json:"used"`
	Total int64 `json:"total"`
}

// StorageService reports quota usage. The sum spans every file row including
// soft-deleted ones, and is not scoped per user.
type StorageService struct {
	fileRepo   repository.FileRepository
	quotaBytes int64
}

func NewStorageService(fileRepo repository.FileRepository, quotaBytes int64) *StorageService {
	return &StorageService{
		fileRepo:   fileRepo,
		quotaBytes: quotaBytes,
	}
}

func (s *StorageService) Usage() (*StorageUsage, error) {
	used, err := s.fileRepo.SumSizes()
	if err != nil {
		return nil, err
	}

	return &StorageUsage{Used: used, Total: s.quotaBytes}, nil
}
