package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filevault/filevault/internal/model"
)

func TestStorageUsage(t *testing.T) {
	repo := &fakeFileRepo{}
	require.NoError(t, repo.Create(&model.File{DisplayName: "a.txt", Size: 100}))
	require.NoError(t, repo.Create(&model.File{DisplayName: "b.txt", Size: 250, IsDeleted: true}))

	svc := NewStorageService(repo, 5<<30)

	usage, err := svc.Usage()
	require.NoError(t, err)

	// Trashed files still count against the quota.
	assert.Equal(t, int64(350), usage.Used)
	assert.Equal(t, int64(5<<30), usage.Total)
}
