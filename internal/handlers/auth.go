package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/crucial707/flowchart-api/internal/metrics"
	"github.com/crucial707/flowchart-api/internal/middleware"
	"github.com/crucial707/flowchart-api/internal/password"
	"github.com/crucial707/flowchart-api/internal/repo"
	"github.com/crucial707/flowchart-api/internal/token"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	UserRepo *repo.UserRepo
	Tokens   *token.Service
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ==========================
// Register
// ==========================

// Register creates a user and returns a bearer token. The pre-insert lookup
// gives friendly 400s, but the unique indexes decide under concurrent
// registrations: a constraint violation from the insert maps to the same 400.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Username string `json:"username" validate:"required,min=1,max=100"`
		Password string `json:"password" validate:"required,min=1"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.UserRepo.GetByEmailOrUsername(r.Context(), input.Email, input.Username); err == nil {
		JSONError(w, "user already exists", http.StatusBadRequest)
		return
	} else if !errors.Is(err, repo.ErrNotFound) {
		slog.Error("register: uniqueness check failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		slog.Error("register: hash password failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	user, err := h.UserRepo.Create(r.Context(), input.Email, input.Username, hashed)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			JSONError(w, "user already exists", http.StatusBadRequest)
			return
		}
		slog.Error("register: create user failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	signed, err := h.Tokens.Issue(user.ID)
	if err != nil {
		slog.Error("register: issue token failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusCreated, tokenResponse{AccessToken: signed, TokenType: "bearer"})
}

// ==========================
// Login
// ==========================

// Login verifies username and password and returns a bearer token. Unknown
// username and wrong password produce the same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := h.UserRepo.GetByUsername(r.Context(), input.Username)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			slog.Error("login: lookup user failed", "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		metrics.IncLogins("failure")
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if !password.Verify(input.Password, user.HashedPassword) {
		metrics.IncLogins("failure")
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	signed, err := h.Tokens.Issue(user.ID)
	if err != nil {
		slog.Error("login: issue token failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncLogins("success")
	JSON(w, http.StatusOK, tokenResponse{AccessToken: signed, TokenType: "bearer"})
}

// ==========================
// Me
// ==========================

// Me returns the identity of the authenticated caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	JSON(w, http.StatusOK, user)
}
