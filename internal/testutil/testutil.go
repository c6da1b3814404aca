// Package testutil provides shared helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/mdshelf/mdshelf/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// UniqueEmail returns an email address unique to this test run.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@test.local", prefix, uuid.New().String()[:8])
}

// NewTestUser builds a user fixture with a fresh ID and unique email.
func NewTestUser(t testing.TB, emailPrefix string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		ID:           uuid.New().String(),
		Email:        UniqueEmail(emailPrefix),
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$dGVzdHNhbHQ$dGVzdGhhc2g",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestFile builds a file fixture owned by ownerID (nil for anonymous).
func NewTestFile(t testing.TB, ownerID *string, filename string) *model.File {
	t.Helper()
	now := time.Now().UTC()
	content := "# " + filename
	return &model.File{
		ID:         ulid.Make().String(),
		OwnerID:    ownerID,
		Filename:   filename,
		Content:    content,
		SizeBytes:  int64(len(content)),
		Visibility: model.VisibilityPrivate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Ctx returns a context cancelled when the test ends.
func Ctx(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
