package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mdshelf/mdshelf/internal/model"
)

// Common errors for file repository operations.
var (
	// ErrFileNotFound is returned when no file matches the lookup criteria.
	// Ownership mismatches surface as not-found on purpose: the API never
	// reveals whether a file exists for another owner.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileNotClaimable is returned when a claim targets a file that does
	// not exist or already has an owner.
	ErrFileNotClaimable = errors.New("file not found or already claimed")
)

// sortColumns maps the allowed API sort fields to their columns.
// Anything outside this map is rejected at the validation boundary,
// so user input never reaches the query text.
var sortColumns = map[model.SortField]string{
	model.SortCreatedAt: "created_at",
	model.SortFilename:  "filename",
	model.SortSizeBytes: "size_bytes",
}

// FileFilter defines the scope and shape of a file listing.
// OwnerID is mandatory; a listing never crosses owners.
type FileFilter struct {
	OwnerID    string
	Visibility model.Visibility // empty means no visibility filter
	Search     string           // substring match on filename, case-insensitive
	Sort       model.SortField
	Order      model.SortOrder
	Limit      int
	Offset     int
}

const fileMetadataColumns = "id, owner_id, filename, size_bytes, visibility, created_at, updated_at"

// CreateFile inserts a new file record.
func (r *Repository) CreateFile(ctx context.Context, file *model.File) error {
	query := `
		INSERT INTO files (id, owner_id, filename, content, size_bytes, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		file.ID,
		file.OwnerID,
		file.Filename,
		file.Content,
		file.SizeBytes,
		file.Visibility,
		file.CreatedAt,
		file.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	return nil
}

// GetFileByID retrieves a file, including its content, by ID.
// When ownerID is non-nil the file must belong to that owner; a mismatch
// is reported as ErrFileNotFound.
func (r *Repository) GetFileByID(ctx context.Context, id string, ownerID *string) (*model.File, error) {
	query := `
		SELECT id, owner_id, filename, content, size_bytes, visibility, created_at, updated_at
		FROM files
		WHERE id = $1
	`
	args := []any{id}

	if ownerID != nil {
		query += " AND owner_id = $2"
		args = append(args, *ownerID)
	}

	var file model.File
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&file.ID,
		&file.OwnerID,
		&file.Filename,
		&file.Content,
		&file.SizeBytes,
		&file.Visibility,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file by ID: %w", err)
	}

	return &file, nil
}

// ListFiles retrieves one page of an owner's files plus the total match count.
// The filter's Sort and Order must already be validated; unknown sort fields
// fall back to created_at.
func (r *Repository) ListFiles(ctx context.Context, filter FileFilter) ([]*model.File, int, error) {
	where := "WHERE owner_id = $1"
	args := []any{filter.OwnerID}
	argIndex := 2

	if filter.Visibility != "" {
		where += fmt.Sprintf(" AND visibility = $%d", argIndex)
		args = append(args, filter.Visibility)
		argIndex++
	}

	if filter.Search != "" {
		where += fmt.Sprintf(" AND filename ILIKE $%d", argIndex)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argIndex++
	}

	// Count before paging so totalPages can be derived.
	var total int
	countQuery := "SELECT COUNT(*) FROM files " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count files: %w", err)
	}

	column, ok := sortColumns[filter.Sort]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.Order == model.OrderAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf(
		"SELECT %s FROM files %s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d",
		fileMetadataColumns, where, column, direction, direction, argIndex, argIndex+1,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*model.File
	for rows.Next() {
		file, err := scanFileMetadata(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating files: %w", err)
	}

	return files, total, nil
}

// ClaimFile assigns an owner to a currently unowned file.
// The owner check and the update are a single conditional statement, so two
// concurrent claims can never both succeed.
func (r *Repository) ClaimFile(ctx context.Context, id, ownerID string) (*model.File, error) {
	query := `
		UPDATE files
		SET owner_id = $2, updated_at = now()
		WHERE id = $1 AND owner_id IS NULL
		RETURNING ` + fileMetadataColumns

	file, err := scanFileMetadata(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFileNotClaimable
		}
		return nil, fmt.Errorf("failed to claim file: %w", err)
	}

	return file, nil
}

// DeleteFile removes a file matching both id and owner.
// Returns ErrFileNotFound when nothing matched.
func (r *Repository) DeleteFile(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM files WHERE id = $1 AND owner_id = $2`

	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrFileNotFound
	}

	return nil
}

// scanFileMetadata scans a metadata row (no content column) into a File.
func scanFileMetadata(row pgx.Row) (*model.File, error) {
	var file model.File
	err := row.Scan(
		&file.ID,
		&file.OwnerID,
		&file.Filename,
		&file.SizeBytes,
		&file.Visibility,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// escapeLike escapes LIKE wildcards so search terms match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
