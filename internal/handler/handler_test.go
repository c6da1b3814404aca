package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mdshelf/mdshelf/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// envelope mirrors dto.Envelope for decoding in tests.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func TestNotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()

	NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Error("expected success=false")
	}
	if env.Error != "Resource not found" {
		t.Errorf("unexpected error message: %s", env.Error)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", nil)
	rec := httptest.NewRecorder()

	MethodNotAllowed(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	if env.Error != "Method not allowed" {
		t.Errorf("unexpected error message: %s", env.Error)
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "email taken",
			err:        service.ErrEmailTaken,
			wantStatus: http.StatusBadRequest,
			wantError:  "User with this email already exists",
		},
		{
			name:       "invalid credentials",
			err:        service.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid email or password",
		},
		{
			name:       "user not found",
			err:        service.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "User not found",
		},
		{
			name:       "file not found",
			err:        service.ErrFileNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "File not found",
		},
		{
			name:       "file not claimable",
			err:        service.ErrFileNotClaimable,
			wantStatus: http.StatusNotFound,
			wantError:  "File not found or already claimed",
		},
		{
			name:       "invalid visibility",
			err:        service.ErrInvalidVisibility,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid visibility value",
		},
		{
			name:       "wrapped sentinel",
			err:        errors.Join(errors.New("get file"), service.ErrFileNotFound),
			wantStatus: http.StatusNotFound,
			wantError:  "File not found",
		},
		{
			name:       "unknown error",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			writeServiceError(rec, discardLogger(), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			env := decodeEnvelope(t, rec)
			if env.Success {
				t.Error("expected success=false")
			}
			if env.Error != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, env.Error)
			}
		})
	}
}
