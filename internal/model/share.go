package model

import (
	"time"
)

type Share struct {
	ID         int64      `db:"id" json:"id"`
	ShareToken string     `db:"share_token" json:"share_token"`
	FileID     int64      `db:"file_id" json:"file_id"`
	IsPublic   bool       `db:"is_public" json:"is_public"`
	SharedWith *string    `db:"shared_with" json:"shared_with"` // comma-separated emails, NULL when public
	CreatedBy  string     `db:"created_by" json:"created_by"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// SharedFile is a share row joined with the metadata of the file it grants
// access to. Resolution returns the storage key, not the bytes.
type SharedFile struct {
	Share
	FileName    string `db:"display_name" json:"fileName"`
	MimeType    string `db:"mime_type" json:"mimeType"`
	StoragePath string `db:"storage_path" json:"storagePath"`
}
