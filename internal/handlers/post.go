package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/inkwell/inkwell/internal/metrics"
	"github.com/inkwell/inkwell/internal/middleware"
	"github.com/inkwell/inkwell/internal/models"
	"github.com/inkwell/inkwell/internal/repo"
	"github.com/inkwell/inkwell/internal/storage"
)

type PostHandler struct {
	Posts *repo.PostRepo
	Users *repo.UserRepo
	Files storage.FileStore
}

type postInput struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Img         string `json:"img" validate:"max=1024"`
	Content     string `json:"content" validate:"required"`
	Description string `json:"description" validate:"required,max=2000"`
	Category    string `json:"category" validate:"required,max=64"`
}

//
// ==========================
// List Posts
// ==========================
//

func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("cat")

	posts, err := h.Posts.List(r.Context(), category)
	if err != nil {
		slog.Error("list posts failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	JSON(w, posts)
}

//
// ==========================
// Get Post By ID
// ==========================
//

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	post, err := h.Posts.GetByID(r.Context(), id)
	if err == sql.ErrNoRows {
		JSONError(w, "Post not found!", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("get post failed", "post_id", id, "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, post)
}

//
// ==========================
// Create Post
// ==========================
//

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		JSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var input postInput
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

	if _, err := h.Posts.Create(r.Context(), input.Title, input.Img, input.Content, input.Description, input.Category, uid); err != nil {
		slog.Error("create post failed", "uid", uid, "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncPosts("created")
	JSONMessage(w, "Post has been created.")
}

//
// ==========================
// Update Post
// ==========================
//

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.authorizeMutation(w, r, "You can update only your post!")
	if !ok {
		return
	}

	var input postInput
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

	if _, err := h.Posts.Update(r.Context(), post.ID, input.Title, input.Img, input.Content, input.Description, input.Category); err != nil {
		slog.Error("update post failed", "post_id", post.ID, "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncPosts("updated")
	JSONMessage(w, "Post has been updated.")
}

//
// ==========================
// Delete Post
// ==========================
//

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.authorizeMutation(w, r, "You can delete only your post!")
	if !ok {
		return
	}

	if err := h.Posts.DeleteByID(r.Context(), post.ID); err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "Post not found!", http.StatusNotFound)
			return
		}
		slog.Error("delete post failed", "post_id", post.ID, "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	// Best effort: the post row is already gone, so a failed image delete is
	// logged and the request still succeeds. The sweeper catches leftovers.
	if post.Img != "" && h.Files != nil {
		if err := h.Files.Delete(r.Context(), post.Img); err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("delete post image failed", "post_id", post.ID, "img", post.Img, "err", err)
		}
	}

	metrics.IncPosts("deleted")
	JSONMessage(w, "Post has been deleted!")
}

//
// ==========================
// Ownership check
// ==========================
//

// authorizeMutation is the single ownership gate for post mutations: it loads
// the target post and lets the call through only for the owner or an admin.
// A missing post reports 404 before ownership is even looked at, so a caller
// probing a wrong id cannot tell whose post it was. On rejection the response
// has already been written and ok is false.
func (h *PostHandler) authorizeMutation(w http.ResponseWriter, r *http.Request, forbiddenMsg string) (*models.Post, bool) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		JSONError(w, "not authenticated", http.StatusUnauthorized)
		return nil, false
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid post id", http.StatusBadRequest)
		return nil, false
	}

	post, err := h.Posts.GetByID(r.Context(), id)
	if err == sql.ErrNoRows {
		JSONError(w, "Post not found!", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		slog.Error("load post for ownership check failed", "post_id", id, "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return nil, false
	}

	if post.UID != uid && !h.isAdmin(r, uid) {
		JSONError(w, forbiddenMsg, http.StatusForbidden)
		return nil, false
	}

	return post, true
}

func (h *PostHandler) isAdmin(r *http.Request, uid int) bool {
	user, err := h.Users.GetByID(r.Context(), uid)
	if err != nil {
		return false
	}
	return user.IsAdmin()
}
