package model

import (
	"time"
)

type File struct {
	ID          int64     `db:"id" json:"id"`
	StoragePath string    `db:"storage_path" json:"storage_path"`
	DisplayName string    `db:"display_name" json:"display_name"`
	UploadedBy  *int64    `db:"uploaded_by" json:"uploaded_by"`
	Size        int64     `db:"size" json:"size"`
	MimeType    string    `db:"mime_type" json:"mime_type"`
	FolderID    *int64    `db:"folder_id" json:"folder_id"`
	IsDeleted   bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// FileSummary is the reduced shape returned by search and folder listings.
type FileSummary struct {
	ID          int64     `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	MimeType    string    `db:"mime_type" json:"mime_type"`
	Size        int64     `db:"size" json:"size"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
