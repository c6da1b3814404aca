// Package model defines domain entities for the application.
package model

import "time"

// Visibility controls who can discover a file.
type Visibility string

const (
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPublic   Visibility = "public"
)

// IsValid checks if the visibility is one of the allowed values.
func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPrivate, VisibilityUnlisted, VisibilityPublic:
		return true
	}
	return false
}

// File represents an uploaded markdown document.
// OwnerID is nil for anonymous uploads until the file is claimed.
type File struct {
	ID         string
	OwnerID    *string
	Filename   string
	Content    string
	SizeBytes  int64
	Visibility Visibility
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsClaimed returns true once the file has an owner.
func (f *File) IsClaimed() bool {
	return f.OwnerID != nil
}

// SortField is a column a file listing may be ordered by.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortFilename  SortField = "filename"
	SortSizeBytes SortField = "sizeBytes"
)

// IsValid checks if the sort field is one of the allowed values.
func (s SortField) IsValid() bool {
	switch s {
	case SortCreatedAt, SortFilename, SortSizeBytes:
		return true
	}
	return false
}

// SortOrder is the direction of a file listing.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// IsValid checks if the sort order is one of the allowed values.
func (o SortOrder) IsValid() bool {
	return o == OrderAsc || o == OrderDesc
}
