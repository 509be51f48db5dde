package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/middleware"
	"github.com/inkwell/inkwell/internal/repo"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	UserRepo *repo.UserRepo
	Tokens   *auth.Tokens
	// SecureCookie marks the session cookie Secure; set when serving HTTPS.
	SecureCookie bool
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"required,min=2,max=64"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6,max=128"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	// ===== Validate input =====
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	exists, err := h.UserRepo.ExistsByEmailOrUsername(r.Context(), input.Email, input.Username)
	if err != nil {
		slog.Error("register: uniqueness check failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if exists {
		JSONError(w, "User already exists!", http.StatusConflict)
		return
	}

	digest, err := auth.HashPassword(input.Password)
	if err != nil {
		slog.Error("register: hash password failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if _, err := h.UserRepo.Create(r.Context(), input.Username, input.Email, digest); err != nil {
		// A concurrent registration can slip past the exists check and land
		// on the unique constraint instead.
		if repo.IsUniqueViolation(err) {
			JSONError(w, "User already exists!", http.StatusConflict)
			return
		}
		slog.Error("register: create user failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONMessage(w, "User has been created.")
}

// ==========================
// Login
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	user, err := h.UserRepo.GetByUsername(r.Context(), input.Username)
	if err == sql.ErrNoRows {
		JSONError(w, "User not found!", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("login: lookup failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if !auth.VerifyPassword(input.Password, user.PasswordHash) {
		JSONError(w, "Wrong username or password!", http.StatusBadRequest)
		return
	}

	signed, err := h.Tokens.Issue(user.ID)
	if err != nil {
		slog.Error("login: issue token failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	// The password hash is json:"-" on the model, so the digest never leaves.
	JSON(w, user)
}

// ==========================
// Logout
// ==========================
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})

	JSONMessage(w, "User has been logged out.")
}
