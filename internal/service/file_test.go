package service

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filevault/filevault/internal/model"
	"github.com/filevault/filevault/internal/repository"
)

type fakeFileRepo struct {
	files     []*model.File
	nextID    int64
	createErr error
	searched  bool
}

func (r *fakeFileRepo) Create(file *model.File) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	file.ID = r.nextID
	r.files = append(r.files, file)
	return nil
}

func (r *fakeFileRepo) ByID(id int64) (*model.File, error) {
	for _, f := range r.files {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, repository.ErrFileNotFound
}

func (r *fakeFileRepo) ListByFolder(folderID *int64) ([]*model.File, error) {
	var out []*model.File
	for _, f := range r.files {
		if f.IsDeleted {
			continue
		}
		if folderID == nil && f.FolderID == nil {
			out = append(out, f)
		} else if folderID != nil && f.FolderID != nil && *f.FolderID == *folderID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) ListTrash() ([]*model.File, error) {
	var out []*model.File
	for _, f := range r.files {
		if f.IsDeleted {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) SummariesByFolder(folderID int64) ([]*model.FileSummary, error) {
	return nil, nil
}

func (r *fakeFileRepo) Rename(id int64, newName string) error {
	f, err := r.ByID(id)
	if err != nil {
		return err
	}
	f.DisplayName = newName
	return nil
}

func (r *fakeFileRepo) SetDeleted(id int64, deleted bool) error {
	f, err := r.ByID(id)
	if err != nil {
		return err
	}
	f.IsDeleted = deleted
	return nil
}

func (r *fakeFileRepo) EmptyTrash() (int64, error) {
	var kept []*model.File
	var deleted int64
	for _, f := range r.files {
		if f.IsDeleted {
			deleted++
			continue
		}
		kept = append(kept, f)
	}
	r.files = kept
	return deleted, nil
}

func (r *fakeFileRepo) Search(query string, limit int) ([]*model.FileSummary, error) {
	r.searched = true
	var out []*model.FileSummary
	for _, f := range r.files {
		if f.IsDeleted {
			continue
		}
		if strings.Contains(strings.ToLower(f.DisplayName), strings.ToLower(query)) {
			out = append(out, &model.FileSummary{ID: f.ID, DisplayName: f.DisplayName})
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeFileRepo) SumSizes() (int64, error) {
	var total int64
	for _, f := range r.files {
		total += f.Size
	}
	return total, nil
}

type fakeFolderRepo struct {
	folders map[int64]*model.Folder
	nextID  int64
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: map[int64]*model.Folder{}}
}

func (r *fakeFolderRepo) Create(folder *model.Folder) error {
	r.nextID++
	folder.ID = r.nextID
	r.folders[folder.ID] = folder
	return nil
}

func (r *fakeFolderRepo) ByID(id int64) (*model.Folder, error) {
	f, ok := r.folders[id]
	if !ok {
		return nil, repository.ErrFolderNotFound
	}
	return f, nil
}

func (r *fakeFolderRepo) Exists(id int64) (bool, error) {
	_, ok := r.folders[id]
	return ok, nil
}

func (r *fakeFolderRepo) All() ([]*model.Folder, error) {
	var out []*model.Folder
	for _, f := range r.folders {
		out = append(out, f)
	}
	return out, nil
}

func (r *fakeFolderRepo) ListTrash() ([]*model.Folder, error) {
	var out []*model.Folder
	for _, f := range r.folders {
		if f.IsDeleted {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) Rename(id int64, newName string) error {
	f, ok := r.folders[id]
	if !ok {
		return repository.ErrFolderNotFound
	}
	f.Name = newName
	return nil
}

func (r *fakeFolderRepo) SetDeleted(id int64, deleted bool) error {
	f, ok := r.folders[id]
	if !ok {
		return repository.ErrFolderNotFound
	}
	f.IsDeleted = deleted
	return nil
}

func (r *fakeFolderRepo) EmptyTrash() (int64, error) {
	var deleted int64
	for id, f := range r.folders {
		if f.IsDeleted {
			delete(r.folders, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeStorage struct {
	objects map[string][]byte
	saveErr error
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Save(key string, body io.Reader, contentType string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) Open(key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Copy(srcKey, dstKey string) error {
	data, ok := s.objects[srcKey]
	if !ok {
		return errors.New("no such key")
	}
	s.objects[dstKey] = data
	return nil
}

func (s *fakeStorage) Delete(key string) error {
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

// makeFileHeaders builds real multipart file headers, the same shape a parsed
// upload request produces.
func makeFileHeaders(t *testing.T, files map[string]string) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["files"]
}

func TestUpload(t *testing.T) {
	fileRepo := &fakeFileRepo{}
	store := newFakeStorage()
	svc := NewFileService(fileRepo, newFakeFolderRepo(), store)

	headers := makeFileHeaders(t, map[string]string{"a.txt": "hello", "b.txt": "world"})

	uploaded, err := svc.Upload(headers, nil)
	require.NoError(t, err)
	require.Len(t, uploaded, 2)

	assert.Len(t, store.objects, 2)
	for _, f := range uploaded {
		assert.True(t, strings.HasPrefix(f.StoragePath, "uploads/"))
		assert.Nil(t, f.FolderID)
		assert.False(t, f.IsDeleted)
		assert.NotZero(t, f.ID)
	}
}

func TestUploadNoFiles(t *testing.T) {
	svc := NewFileService(&fakeFileRepo{}, newFakeFolderRepo(), newFakeStorage())

	_, err := svc.Upload(nil, nil)
	require.ErrorIs(t, err, ErrNoFiles)
}

func TestUploadInvalidParentFolder(t *testing.T) {
	store := newFakeStorage()
	svc := NewFileService(&fakeFileRepo{}, newFakeFolderRepo(), store)

	headers := makeFileHeaders(t, map[string]string{"a.txt": "hello"})
	missing := int64(99)

	_, err := svc.Upload(headers, &missing)
	require.ErrorIs(t, err, ErrInvalidParentFolder)

	// The folder check runs before any byte reaches storage.
	assert.Empty(t, store.objects)
}

func TestUploadTrashedParentStillValid(t *testing.T) {
	folderRepo := newFakeFolderRepo()
	folder := &model.Folder{Name: "docs", IsDeleted: true}
	require.NoError(t, folderRepo.Create(folder))

	svc := NewFileService(&fakeFileRepo{}, folderRepo, newFakeStorage())
	headers := makeFileHeaders(t, map[string]string{"a.txt": "hello"})

	uploaded, err := svc.Upload(headers, &folder.ID)
	require.NoError(t, err)
	require.Len(t, uploaded, 1)
}

func TestUploadCleansUpObjectOnInsertFailure(t *testing.T) {
	fileRepo := &fakeFileRepo{createErr: errors.New("insert failed")}
	store := newFakeStorage()
	svc := NewFileService(fileRepo, newFakeFolderRepo(), store)

	headers := makeFileHeaders(t, map[string]string{"a.txt": "hello"})

	uploaded, err := svc.Upload(headers, nil)
	require.Error(t, err)
	assert.Empty(t, uploaded)

	// The stored object must not survive without its metadata row.
	assert.Empty(t, store.objects)
	assert.Len(t, store.deleted, 1)
}

func TestOpen(t *testing.T) {
	fileRepo := &fakeFileRepo{}
	store := newFakeStorage()
	svc := NewFileService(fileRepo, newFakeFolderRepo(), store)

	file := &model.File{StoragePath: "uploads/1-a.txt", DisplayName: "a.txt", MimeType: "text/plain"}
	require.NoError(t, fileRepo.Create(file))
	store.objects[file.StoragePath] = []byte("hello")

	t.Run("found", func(t *testing.T) {
		got, body, err := svc.Open(file.ID)
		require.NoError(t, err)
		defer func() { _ = body.Close() }()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
		assert.Equal(t, "a.txt", got.DisplayName)
	})

	t.Run("row missing", func(t *testing.T) {
		_, _, err := svc.Open(999)
		require.ErrorIs(t, err, repository.ErrFileNotFound)
	})

	t.Run("object missing", func(t *testing.T) {
		delete(store.objects, file.StoragePath)
		_, _, err := svc.Open(file.ID)
		require.ErrorIs(t, err, ErrObjectNotFound)
	})
}

func TestCopy(t *testing.T) {
	fileRepo := &fakeFileRepo{}
	store := newFakeStorage()
	svc := NewFileService(fileRepo, newFakeFolderRepo(), store)

	original := &model.File{StoragePath: "uploads/1-a.txt", DisplayName: "a.txt", Size: 5, MimeType: "text/plain"}
	require.NoError(t, fileRepo.Create(original))
	store.objects[original.StoragePath] = []byte("hello")

	clone, err := svc.Copy(original.ID)
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, clone.ID)
	assert.NotEqual(t, original.StoragePath, clone.StoragePath)
	assert.Equal(t, original.DisplayName, clone.DisplayName)
	assert.Equal(t, original.Size, clone.Size)
	assert.False(t, clone.IsDeleted)
	assert.Equal(t, []byte("hello"), store.objects[clone.StoragePath])
}

func TestCopyMissingFile(t *testing.T) {
	svc := NewFileService(&fakeFileRepo{}, newFakeFolderRepo(), newFakeStorage())

	_, err := svc.Copy(404)
	require.ErrorIs(t, err, repository.ErrFileNotFound)
}

func TestSearchBlankQuery(t *testing.T) {
	fileRepo := &fakeFileRepo{}
	svc := NewFileService(fileRepo, newFakeFolderRepo(), newFakeStorage())

	for _, q := range []string{"", "   ", "\t"} {
		results, err := svc.Search(q)
		require.NoError(t, err)
		assert.Empty(t, results)
	}

	// Blank queries never reach the store.
	assert.False(t, fileRepo.searched)
}

func TestTrashLifecycle(t *testing.T) {
	fileRepo := &fakeFileRepo{}
	store := newFakeStorage()
	svc := NewFileService(fileRepo, newFakeFolderRepo(), store)

	headers := makeFileHeaders(t, map[string]string{"a.txt": "hello", "b.txt": "world"})
	uploaded, err := svc.Upload(headers, nil)
	require.NoError(t, err)
	require.Len(t, uploaded, 2)

	require.NoError(t, svc.SoftDelete(uploaded[0].ID))

	listed, err := svc.List(nil)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	trash, err := svc.ListTrash()
	require.NoError(t, err)
	assert.Len(t, trash, 1)

	require.NoError(t, svc.Restore(uploaded[0].ID))
	listed, err = svc.List(nil)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	require.NoError(t, svc.SoftDelete(uploaded[1].ID))
	count, err := svc.EmptyTrash()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Bytes in storage are not reclaimed by emptying the trash.
	assert.Len(t, store.objects, 2)
}
