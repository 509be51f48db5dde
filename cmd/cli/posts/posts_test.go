package posts

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/inkwell/inkwell/internal/models"
)

// captureOutput helps capture stdout during command execution.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func TestListPosts_TableOutput(t *testing.T) {
	posts := []models.Post{
		{ID: 1, Title: "First Light", Category: "science", UID: 1, Date: time.Now()},
		{ID: 2, Title: "Sourdough Notes", Category: "food", UID: 2, Date: time.Now()},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/posts" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(posts)
	}))
	defer srv.Close()

	_ = os.Setenv("INKWELL_API_URL", srv.URL)
	defer os.Unsetenv("INKWELL_API_URL")

	cmd := listCmd()

	out := captureOutput(t, func() {
		if err := cmd.RunE(cmd, []string{}); err != nil {
			t.Fatalf("list failed: %v", err)
		}
	})

	if !strings.Contains(out, "First Light") || !strings.Contains(out, "Sourdough Notes") {
		t.Fatalf("expected post titles in output, got: %s", out)
	}
}

func TestListPosts_CategoryFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("cat"); got != "food" {
			t.Fatalf("expected cat=food, got %q", got)
		}
		_ = json.NewEncoder(w).Encode([]models.Post{})
	}))
	defer srv.Close()

	_ = os.Setenv("INKWELL_API_URL", srv.URL)
	defer os.Unsetenv("INKWELL_API_URL")

	cmd := listCmd()
	_ = cmd.Flags().Set("category", "food")

	captureOutput(t, func() {
		if err := cmd.RunE(cmd, []string{}); err != nil {
			t.Fatalf("list failed: %v", err)
		}
	})
}

func TestGetPost_PrintsBody(t *testing.T) {
	post := models.Post{
		ID:       7,
		Title:    "On Ferments",
		Category: "food",
		Content:  "Keep the jar warm.",
		Username: "alice",
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/posts/7" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(post)
	}))
	defer srv.Close()

	_ = os.Setenv("INKWELL_API_URL", srv.URL)
	defer os.Unsetenv("INKWELL_API_URL")

	cmd := getCmd()

	out := captureOutput(t, func() {
		if err := cmd.RunE(cmd, []string{"7"}); err != nil {
			t.Fatalf("get failed: %v", err)
		}
	})

	if !strings.Contains(out, "On Ferments") || !strings.Contains(out, "alice") {
		t.Fatalf("expected post details in output, got: %s", out)
	}
}
