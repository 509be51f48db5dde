package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/inkwell/inkwell/internal/repo"
	"github.com/inkwell/inkwell/internal/storage"
)

var postCols = []string{"id", "title", "img", "content", "description", "category", "uid", "date"}

func newPostHandler(db *sql.DB, files storage.FileStore) *PostHandler {
	return &PostHandler{
		Posts: repo.NewPostRepo(db),
		Users: repo.NewUserRepo(db),
		Files: files,
	}
}

func expectGetPost(mock sqlmock.Sqlmock, id, uid int, img interface{}) {
	mock.ExpectQuery(`JOIN users u ON u.id = p.uid`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(append(postCols, "username")).
			AddRow(id, "T", img, "C", "D", "tech", uid, time.Now(), "alice"))
}

func TestPostHandler_ListPosts_EmptyIsArray(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM posts`).
		WillReturnRows(sqlmock.NewRows(postCols))

	h := newPostHandler(db, nil)
	req := httptest.NewRequest("GET", "/api/posts", nil)
	rr := httptest.NewRecorder()
	h.ListPosts(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("ListPosts status: got %d, want 200", rr.Code)
	}
	// Clients iterate the response; an empty list must still be a JSON array.
	if got := rr.Body.String(); got != "[]\n" {
		t.Errorf("empty list body: got %q, want []", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostHandler_ListPosts_CategoryFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`WHERE category = \$1`).
		WithArgs("tech").
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow(1, "T", nil, "C", "D", "tech", 1, time.Now()))

	h := newPostHandler(db, nil)
	req := httptest.NewRequest("GET", "/api/posts?cat=tech", nil)
	rr := httptest.NewRecorder()
	h.ListPosts(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("ListPosts status: got %d, want 200", rr.Code)
	}
	var posts []struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&posts); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(posts) != 1 || posts[0].Category != "tech" {
		t.Errorf("unexpected posts: %+v", posts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostHandler_GetPost_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`JOIN users u ON u.id = p.uid`).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	h := newPostHandler(db, nil)
	req := requestWithChiURLParams("GET", "/api/posts/99", nil, map[string]string{"id": "99"})
	rr := httptest.NewRecorder()
	h.GetPost(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("GetPost status: got %d, want 404", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostHandler_CreatePost(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs("T", nil, "C", "D", "tech", 5).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow(1, "T", nil, "C", "D", "tech", 5, time.Now()))

	h := newPostHandler(db, nil)
	body, _ := json.Marshal(map[string]string{
		"title": "T", "content": "C", "description": "D", "category": "tech",
	})
	req := withUserID(requestWithChiURLParams("POST", "/api/posts", body, nil), 5)
	rr := httptest.NewRecorder()
	h.CreatePost(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("CreatePost status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["message"] != "Post has been created." {
		t.Errorf("unexpected message: %q", out["message"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostHandler_CreatePost_NoIdentity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := newPostHandler(db, nil)
	body, _ := json.Marshal(map[string]string{
		"title": "T", "content": "C", "description": "D", "category": "tech",
	})
	req := requestWithChiURLParams("POST", "/api/posts", body, nil)
	rr := httptest.NewRecorder()
	h.CreatePost(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("CreatePost status: got %d, want 401", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostHandler_UpdatePost_WrongOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Post 7 belongs to user 3; caller is user 5 and not an admin.
	expectGetPost(mock, 7, 3, nil)
	mock.ExpectQuery(`SELECT id, username, email, password, role`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password", "role", "created_at"}).
			AddRow(5, "bob", "b@x.com", "digest", "member", time.Now()))

	h := newPostHandler(db, nil)
	body, _ := json.Marshal(map[string]string{
		"title": "T2", "content": "C2", "description": "D2", "category": "food",
	})
	req := requestWithChiURLParams("PUT", "/api/posts/7", body, map[string]string{"id": "7"})
	req = withUserID(req, 5)
	rr := httptest.NewRecorder()
	h.UpdatePost(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("UpdatePost status: got %d, want 403", rr.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["error"] != "You can update only your post!" {
		t.Errorf("unexpected error: %q", out["error"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostHandler_UpdatePost_Owner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectGetPost(mock, 7, 5, nil)
	mock.ExpectQuery(`UPDATE posts`).
		WithArgs("T2", nil, "C2", "D2", "food", 7).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow(7, "T2", nil, "C2", "D2", "food", 5, time.Now()))

	h := newPostHandler(db, nil)
	body, _ := json.Marshal(map[string]string{
		"title": "T2", "content": "C2", "description": "D2", "category": "food",
	})
	req := requestWithChiURLParams("PUT", "/api/posts/7", body, map[string]string{"id": "7"})
	req = withUserID(req, 5)
	rr := httptest.NewRecorder()
	h.UpdatePost(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("UpdatePost status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostHandler_UpdatePost_Admin(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Post belongs to user 3; caller 9 is an admin, so the update goes through.
	expectGetPost(mock, 7, 3, nil)
	mock.ExpectQuery(`SELECT id, username, email, password, role`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password", "role", "created_at"}).
			AddRow(9, "root", "r@x.com", "digest", "admin", time.Now()))
	mock.ExpectQuery(`UPDATE posts`).
		WithArgs("T2", nil, "C2", "D2", "food", 7).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow(7, "T2", nil, "C2", "D2", "food", 3, time.Now()))

	h := newPostHandler(db, nil)
	body, _ := json.Marshal(map[string]string{
		"title": "T2", "content": "C2", "description": "D2", "category": "food",
	})
	req := requestWithChiURLParams("PUT", "/api/posts/7", body, map[string]string{"id": "7"})
	req = withUserID(req, 9)
	rr := httptest.NewRecorder()
	h.UpdatePost(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("UpdatePost status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostHandler_DeletePost_NotFoundBeforeForbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Missing post must be 404 even for a caller who owns nothing.
	mock.ExpectQuery(`JOIN users u ON u.id = p.uid`).
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	h := newPostHandler(db, nil)
	req := requestWithChiURLParams("DELETE", "/api/posts/404", nil, map[string]string{"id": "404"})
	req = withUserID(req, 5)
	rr := httptest.NewRecorder()
	h.DeletePost(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("DeletePost status: got %d, want 404", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// flakyStore fails every delete, standing in for a broken object store.
type flakyStore struct {
	storage.FileStore
	deletes int
}

func (s *flakyStore) Delete(_ context.Context, _ string) error {
	s.deletes++
	return context.DeadlineExceeded
}

func TestPostHandler_DeletePost_ImageCleanupBestEffort(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectGetPost(mock, 7, 5, "/uploads/a.png")
	mock.ExpectExec(`DELETE FROM posts WHERE id = \$1`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	files := &flakyStore{}
	h := newPostHandler(db, files)
	req := requestWithChiURLParams("DELETE", "/api/posts/7", nil, map[string]string{"id": "7"})
	req = withUserID(req, 5)
	rr := httptest.NewRecorder()
	h.DeletePost(rr, req)

	// The row is gone; a failed image delete must not fail the request.
	if rr.Code != http.StatusOK {
		t.Errorf("DeletePost status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	if files.deletes != 1 {
		t.Errorf("image delete attempts: got %d, want 1", files.deletes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
