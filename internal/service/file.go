package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mdshelf/mdshelf/internal/model"
	"github.com/mdshelf/mdshelf/internal/repository"
)

// Service errors for file operations.
var (
	// ErrFileNotFound is returned when a file is absent or not visible to
	// the requester. Ownership mismatches use the same error so the API
	// never confirms that a foreign file exists.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileNotClaimable is returned when a claim targets a missing or
	// already-claimed file.
	ErrFileNotClaimable = errors.New("file not found or already claimed")

	// ErrInvalidVisibility is returned for a visibility value outside the
	// private/unlisted/public enum.
	ErrInvalidVisibility = errors.New("invalid visibility value")
)

// Listing defaults and caps.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// FileRepository is the persistence surface FileService depends on.
// *repository.Repository satisfies it.
type FileRepository interface {
	CreateFile(ctx context.Context, file *model.File) error
	GetFileByID(ctx context.Context, id string, ownerID *string) (*model.File, error)
	ListFiles(ctx context.Context, filter repository.FileFilter) ([]*model.File, int, error)
	ClaimFile(ctx context.Context, id, ownerID string) (*model.File, error)
	DeleteFile(ctx context.Context, id, ownerID string) error
}

// FileService handles upload, listing, claiming, and deletion of files.
type FileService struct {
	repo FileRepository
}

// NewFileService creates a new FileService.
func NewFileService(repo FileRepository) *FileService {
	return &FileService{repo: repo}
}

// ListFilesInput defines a listing request. Zero values mean defaults.
type ListFilesInput struct {
	Visibility model.Visibility
	Search     string
	Sort       model.SortField
	Order      model.SortOrder
	Page       int
	Limit      int
}

// Pagination describes the page window of a listing result.
type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// ListFilesOutput is one page of an owner's files.
type ListFilesOutput struct {
	Files      []*model.File
	Pagination Pagination
}

// ListFiles returns one page of the owner's files. The scope is always
// owner-bound: anonymous files and other owners' files never appear.
// Limit defaults to 20 and is silently clamped to 100; page defaults to 1.
func (s *FileService) ListFiles(ctx context.Context, ownerID string, input ListFilesInput) (*ListFilesOutput, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	sort := input.Sort
	if sort == "" {
		sort = model.SortCreatedAt
	}
	order := input.Order
	if order == "" {
		order = model.OrderDesc
	}

	files, total, err := s.repo.ListFiles(ctx, repository.FileFilter{
		OwnerID:    ownerID,
		Visibility: input.Visibility,
		Search:     input.Search,
		Sort:       sort,
		Order:      order,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return &ListFilesOutput{
		Files: files,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

// Upload stores a new file for an owner. Size is the UTF-8 byte length of
// the content at upload time; content is immutable afterwards.
// Empty visibility defaults to private.
func (s *FileService) Upload(ctx context.Context, ownerID, filename, content string, visibility model.Visibility) (*model.File, error) {
	return s.upload(ctx, &ownerID, filename, content, visibility)
}

// UploadAnonymous stores a new file with no owner. The file stays
// unreachable through owner-scoped paths until claimed.
func (s *FileService) UploadAnonymous(ctx context.Context, filename, content string, visibility model.Visibility) (*model.File, error) {
	return s.upload(ctx, nil, filename, content, visibility)
}

func (s *FileService) upload(ctx context.Context, ownerID *string, filename, content string, visibility model.Visibility) (*model.File, error) {
	if visibility == "" {
		visibility = model.VisibilityPrivate
	}
	if !visibility.IsValid() {
		return nil, ErrInvalidVisibility
	}

	now := time.Now().UTC()
	file := &model.File{
		ID:         ulid.Make().String(),
		OwnerID:    ownerID,
		Filename:   filename,
		Content:    content,
		SizeBytes:  int64(len(content)),
		Visibility: visibility,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.CreateFile(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return file, nil
}

// GetByID retrieves a file with content. With a non-nil ownerID the file
// must belong to that owner; with nil any file is returned by id (used by
// access paths whose visibility decision lives at the boundary).
func (s *FileService) GetByID(ctx context.Context, fileID string, ownerID *string) (*model.File, error) {
	file, err := s.repo.GetFileByID(ctx, fileID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return file, nil
}

// Claim transfers an unowned file to the claimant. The transition is
// one-way and happens at most once; the repository performs the null-owner
// check and the update as a single conditional statement.
func (s *FileService) Claim(ctx context.Context, fileID, claimantID string) (*model.File, error) {
	file, err := s.repo.ClaimFile(ctx, fileID, claimantID)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotClaimable) {
			return nil, ErrFileNotClaimable
		}
		return nil, fmt.Errorf("failed to claim file: %w", err)
	}

	return file, nil
}

// Delete irreversibly removes a file owned by ownerID.
// A non-owner delete reports ErrFileNotFound, never a forbidden error.
func (s *FileService) Delete(ctx context.Context, fileID, ownerID string) error {
	if err := s.repo.DeleteFile(ctx, fileID, ownerID); err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return ErrFileNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
