package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/middleware"
	"github.com/inkwell/inkwell/internal/repo"
)

// ==========================
// User Handler
// ==========================
type UserHandler struct {
	UserRepo *repo.UserRepo
}

// ==========================
// Get Profile
// ==========================
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.UserRepo.GetByID(r.Context(), id)
	if err == sql.ErrNoRows {
		JSONError(w, "User not found!", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("get user failed", "user_id", id, "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, user)
}

// ==========================
// Update Profile (self or admin)
// ==========================
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.UserID(r.Context())
	if !ok {
		JSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	target, err := h.UserRepo.GetByID(r.Context(), id)
	if err == sql.ErrNoRows {
		JSONError(w, "User not found!", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("load user for update failed", "user_id", id, "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if callerID != target.ID && !h.callerIsAdmin(r, callerID) {
		JSONError(w, "You can update only your profile!", http.StatusForbidden)
		return
	}

	var input struct {
		Username string `json:"username" validate:"required,min=2,max=64"`
		Email    string `json:"email" validate:"required,email"`
		// Password is optional; when empty the existing digest is kept.
		Password string `json:"password" validate:"omitempty,min=6,max=128"`
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

	digest := target.PasswordHash
	if input.Password != "" {
		digest, err = auth.HashPassword(input.Password)
		if err != nil {
			slog.Error("update user: hash password failed", "err", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
	}

	user, err := h.UserRepo.Update(r.Context(), target.ID, input.Username, input.Email, digest)
	if repo.IsUniqueViolation(err) {
		JSONError(w, "Username or email already in use!", http.StatusConflict)
		return
	}
	if err != nil {
		slog.Error("update user failed", "user_id", id, "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, user)
}

func (h *UserHandler) callerIsAdmin(r *http.Request, uid int) bool {
	caller, err := h.UserRepo.GetByID(r.Context(), uid)
	if err != nil {
		return false
	}
	return caller.IsAdmin()
}
