// Package dto defines the wire types of the public API.
// Field names are camelCase; this is the published contract.
package dto

import (
	"time"

	"github.com/mdshelf/mdshelf/internal/model"
	"github.com/mdshelf/mdshelf/internal/service"
)

// Envelope is the uniform response wrapper for all JSON endpoints.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public projection of a user.
// The password hash is structurally absent, not merely omitted.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthResponse pairs a session token with the authenticated user.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// FileMetadata is a file without its content.
type FileMetadata struct {
	ID         string    `json:"id"`
	OwnerID    *string   `json:"ownerId"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"sizeBytes"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FileWithContent is a file including its raw markdown content.
type FileWithContent struct {
	FileMetadata
	Content string `json:"content"`
}

// Pagination describes the page window of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// FileListResponse is one page of file metadata.
type FileListResponse struct {
	Files      []FileMetadata `json:"files"`
	Pagination Pagination     `json:"pagination"`
}

// ToUserResponse converts a user to its public projection.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToAuthResponse converts an auth result to its wire form.
func ToAuthResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		Token: result.Token,
		User:  ToUserResponse(result.User),
	}
}

// ToFileMetadata converts a file to its metadata wire form.
func ToFileMetadata(file *model.File) FileMetadata {
	return FileMetadata{
		ID:         file.ID,
		OwnerID:    file.OwnerID,
		Filename:   file.Filename,
		SizeBytes:  file.SizeBytes,
		Visibility: string(file.Visibility),
		CreatedAt:  file.CreatedAt,
		UpdatedAt:  file.UpdatedAt,
	}
}

// ToFileWithContent converts a file to its full wire form.
func ToFileWithContent(file *model.File) FileWithContent {
	return FileWithContent{
		FileMetadata: ToFileMetadata(file),
		Content:      file.Content,
	}
}

// ToFileListResponse converts one listing page to its wire form.
func ToFileListResponse(out *service.ListFilesOutput) FileListResponse {
	files := make([]FileMetadata, 0, len(out.Files))
	for _, f := range out.Files {
		files = append(files, ToFileMetadata(f))
	}

	return FileListResponse{
		Files: files,
		Pagination: Pagination{
			Page:       out.Pagination.Page,
			Limit:      out.Pagination.Limit,
			Total:      out.Pagination.Total,
			TotalPages: out.Pagination.TotalPages,
		},
	}
}
