package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mdshelf/mdshelf/internal/auth"
	"github.com/mdshelf/mdshelf/internal/handler/dto"
	"github.com/mdshelf/mdshelf/internal/model"
	"github.com/mdshelf/mdshelf/internal/service"
)

// minPasswordLength is the minimum accepted password length at registration.
const minPasswordLength = 8

// AuthService is the business logic surface the auth handler depends on.
// *service.AuthService satisfies it.
type AuthService interface {
	Register(ctx context.Context, email, password string, name *string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	svc    AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !isValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	result, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user registered", "user_id", result.User.ID)

	writeSuccess(w, http.StatusCreated, dto.ToAuthResponse(result), "User registered successfully")
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user logged in", "user_id", result.User.ID)

	writeSuccess(w, http.StatusOK, dto.ToAuthResponse(result), "Login successful")
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustUserFromContext(r.Context())

	user, err := h.svc.CurrentUser(r.Context(), identity.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToUserResponse(user), "")
}

// isValidEmail applies a lightweight shape check; real validation is the
// confirmation loop's job, not the API's.
func isValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}
