package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdshelf/mdshelf/internal/model"
	"github.com/mdshelf/mdshelf/internal/repository"
)

// fakeFileRepo is an in-memory FileRepository that also records the last
// filter it was handed, so query normalization can be asserted.
type fakeFileRepo struct {
	files      map[string]*model.File
	lastFilter repository.FileFilter
	listResult []*model.File
	listTotal  int
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[string]*model.File)}
}

func (r *fakeFileRepo) CreateFile(_ context.Context, file *model.File) error {
	r.files[file.ID] = file
	return nil
}

func (r *fakeFileRepo) GetFileByID(_ context.Context, id string, ownerID *string) (*model.File, error) {
	file, ok := r.files[id]
	if !ok {
		return nil, repository.ErrFileNotFound
	}
	if ownerID != nil {
		if file.OwnerID == nil || *file.OwnerID != *ownerID {
			return nil, repository.ErrFileNotFound
		}
	}
	return file, nil
}

func (r *fakeFileRepo) ListFiles(_ context.Context, filter repository.FileFilter) ([]*model.File, int, error) {
	r.lastFilter = filter
	return r.listResult, r.listTotal, nil
}

func (r *fakeFileRepo) ClaimFile(_ context.Context, id, ownerID string) (*model.File, error) {
	file, ok := r.files[id]
	if !ok || file.OwnerID != nil {
		return nil, repository.ErrFileNotClaimable
	}
	file.OwnerID = &ownerID
	return file, nil
}

func (r *fakeFileRepo) DeleteFile(_ context.Context, id, ownerID string) error {
	file, ok := r.files[id]
	if !ok || file.OwnerID == nil || *file.OwnerID != ownerID {
		return repository.ErrFileNotFound
	}
	delete(r.files, id)
	return nil
}

func TestFileService_Upload(t *testing.T) {
	t.Parallel()

	repo := newFakeFileRepo()
	svc := NewFileService(repo)

	file, err := svc.Upload(context.Background(), "user-1", "note.md", "# Hi", "")
	require.NoError(t, err)

	assert.NotEmpty(t, file.ID)
	require.NotNil(t, file.OwnerID)
	assert.Equal(t, "user-1", *file.OwnerID)
	assert.Equal(t, "note.md", file.Filename)
	assert.Equal(t, int64(4), file.SizeBytes)
	assert.Equal(t, model.VisibilityPrivate, file.Visibility, "unspecified visibility defaults to private")
}

func TestFileService_Upload_SizeIsUTF8ByteLength(t *testing.T) {
	t.Parallel()

	repo := newFakeFileRepo()
	svc := NewFileService(repo)

	// "héllo" is 5 runes but 6 bytes in UTF-8.
	file, err := svc.Upload(context.Background(), "user-1", "hello.md", "héllo", model.VisibilityPublic)
	require.NoError(t, err)
	assert.Equal(t, int64(6), file.SizeBytes)
	assert.Equal(t, model.VisibilityPublic, file.Visibility)
}

func TestFileService_Upload_InvalidVisibility(t *testing.T) {
	t.Parallel()

	svc := NewFileService(newFakeFileRepo())

	_, err := svc.Upload(context.Background(), "user-1", "note.md", "body", "internal")
	assert.ErrorIs(t, err, ErrInvalidVisibility)
}

func TestFileService_UploadAnonymous(t *testing.T) {
	t.Parallel()

	repo := newFakeFileRepo()
	svc := NewFileService(repo)

	file, err := svc.UploadAnonymous(context.Background(), "anon.md", "# Hi", "")
	require.NoError(t, err)
	assert.Nil(t, file.OwnerID)
	assert.Equal(t, model.VisibilityPrivate, file.Visibility)
}

func TestFileService_ListFiles_Defaults(t *testing.T) {
	t.Parallel()

	repo := newFakeFileRepo()
	svc := NewFileService(repo)

	out, err := svc.ListFiles(context.Background(), "user-1", ListFilesInput{})
	require.NoError(t, err)

	assert.Equal(t, "user-1", repo.lastFilter.OwnerID)
	assert.Equal(t, DefaultPageLimit, repo.lastFilter.Limit)
	assert.Equal(t, 0, repo.lastFilter.Offset)
	assert.Equal(t, model.SortCreatedAt, repo.lastFilter.Sort)
	assert.Equal(t, model.OrderDesc, repo.lastFilter.Order)
	assert.Equal(t, 1, out.Pagination.Page)
	assert.Equal(t, DefaultPageLimit, out.Pagination.Limit)
}

func TestFileService_ListFiles_LimitClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"over cap is clamped", 500, MaxPageLimit},
		{"zero uses default", 0, DefaultPageLimit},
		{"negative uses default", -3, DefaultPageLimit},
		{"in range passes through", 42, 42},
		{"exactly cap", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeFileRepo()
			svc := NewFileService(repo)

			out, err := svc.ListFiles(context.Background(), "user-1", ListFilesInput{Limit: tt.limit})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, repo.lastFilter.Limit)
			assert.Equal(t, tt.wantLimit, out.Pagination.Limit)
		})
	}
}

func TestFileService_ListFiles_OffsetMath(t *testing.T) {
	t.Parallel()

	repo := newFakeFileRepo()
	svc := NewFileService(repo)

	_, err := svc.ListFiles(context.Background(), "user-1", ListFilesInput{Page: 3, Limit: 10})
	require.NoError(t, err)

	// skip = (page-1) * limit
	assert.Equal(t, 20, repo.lastFilter.Offset)
	assert.Equal(t, 10, repo.lastFilter.Limit)
}

func TestFileService_ListFiles_TotalPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		total      int
		limit      int
		totalPages int
	}{
		{"exact division", 40, 20, 2},
		{"partial last page", 41, 20, 3},
		{"empty", 0, 20, 0},
		{"single item", 1, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeFileRepo()
			repo.listTotal = tt.total
			svc := NewFileService(repo)

			out, err := svc.ListFiles(context.Background(), "user-1", ListFilesInput{Limit: tt.limit})
			require.NoError(t, err)
			assert.Equal(t, tt.totalPages, out.Pagination.TotalPages)
			assert.Equal(t, tt.total, out.Pagination.Total)
		})
	}
}

func TestFileService_ListFiles_FilterPassthrough(t *testing.T) {
	t.Parallel()

	repo := newFakeFileRepo()
	svc := NewFileService(repo)

	_, err := svc.ListFiles(context.Background(), "user-1", ListFilesInput{
		Visibility: model.VisibilityUnlisted,
		Search:     "notes",
		Sort:       model.SortSizeBytes,
		Order:      model.OrderAsc,
	})
	require.NoError(t, err)

	assert.Equal(t, model.VisibilityUnlisted, repo.lastFilter.Visibility)
	assert.Equal(t, "notes", repo.lastFilter.Search)
	assert.Equal(t, model.SortSizeBytes, repo.lastFilter.Sort)
	assert.Equal(t, model.OrderAsc, repo.lastFilter.Order)
}

func TestFileService_Claim(t *testing.T) {
	t.Parallel()

	repo := newFakeFileRepo()
	svc := NewFileService(repo)

	file, err := svc.UploadAnonymous(context.Background(), "anon.md", "# Hi", "")
	require.NoError(t, err)

	claimed, err := svc.Claim(context.Background(), file.ID, "user-a")
	require.NoError(t, err)
	require.NotNil(t, claimed.OwnerID)
	assert.Equal(t, "user-a", *claimed.OwnerID)

	// A second claim, even by another user, fails the same way as a
	// missing file.
	_, err = svc.Claim(context.Background(), file.ID, "user-b")
	assert.ErrorIs(t, err, ErrFileNotClaimable)

	_, err = svc.Claim(context.Background(), "no-such-file", "user-a")
	assert.ErrorIs(t, err, ErrFileNotClaimable)
}

func TestFileService_GetByID(t *testing.T) {
	t.Parallel()

	repo := newFakeFileRepo()
	svc := NewFileService(repo)

	file, err := svc.Upload(context.Background(), "user-1", "doc.md", "content", "")
	require.NoError(t, err)

	owner := "user-1"
	got, err := svc.GetByID(context.Background(), file.ID, &owner)
	require.NoError(t, err)
	assert.Equal(t, "content", got.Content)

	stranger := "user-2"
	_, err = svc.GetByID(context.Background(), file.ID, &stranger)
	assert.ErrorIs(t, err, ErrFileNotFound)

	// Unscoped fetch returns any file by id.
	got, err = svc.GetByID(context.Background(), file.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, file.ID, got.ID)
}

func TestFileService_Delete(t *testing.T) {
	t.Parallel()

	repo := newFakeFileRepo()
	svc := NewFileService(repo)

	file, err := svc.Upload(context.Background(), "user-1", "gone.md", "bye", "")
	require.NoError(t, err)

	// Non-owner delete reports not-found, not forbidden.
	err = svc.Delete(context.Background(), file.ID, "user-2")
	assert.ErrorIs(t, err, ErrFileNotFound)

	err = svc.Delete(context.Background(), file.ID, "user-1")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), file.ID, "user-1")
	assert.ErrorIs(t, err, ErrFileNotFound)
}
