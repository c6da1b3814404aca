// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
// PasswordHash never leaves the persistence and service layers.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
