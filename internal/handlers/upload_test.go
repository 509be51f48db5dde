package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/inkwell/inkwell/internal/storage"
)

func multipartBody(t *testing.T, field, filename, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadHandler_AcceptsPNG(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	h := &UploadHandler{Files: store, MaxBytes: 5 << 20}

	body, contentType := multipartBody(t, "file", "pic.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.Upload(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Upload status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(out["url"], "/uploads/") || !strings.HasSuffix(out["url"], ".png") {
		t.Errorf("unexpected url: %q", out["url"])
	}
}

func TestUploadHandler_IgnoresNonImageExtension(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	h := &UploadHandler{Files: store, MaxBytes: 5 << 20}

	// A declared image content type with a non-image filename must not end
	// up stored under that name's extension; the static file server would
	// otherwise serve the payload as HTML.
	body, contentType := multipartBody(t, "file", "evil.html", "image/png", []byte("<script>alert(1)</script>"))
	req := httptest.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.Upload(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Upload status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if strings.HasSuffix(out["url"], ".html") {
		t.Errorf("stored name kept a non-image extension: %q", out["url"])
	}
	if !strings.HasSuffix(out["url"], ".png") {
		t.Errorf("stored name should fall back to the content type's extension: %q", out["url"])
	}
}

func TestUploadHandler_RejectsDisallowedType(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	h := &UploadHandler{Files: store, MaxBytes: 5 << 20}

	body, contentType := multipartBody(t, "file", "evil.svg", "image/svg+xml", []byte("<svg/>"))
	req := httptest.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.Upload(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Upload status: got %d, want 400", rr.Code)
	}
}

func TestUploadHandler_RejectsMissingFile(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	h := &UploadHandler{Files: store, MaxBytes: 5 << 20}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("other", "x")
	mw.Close()

	req := httptest.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.Upload(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Upload status: got %d, want 400", rr.Code)
	}
}

func TestUploadHandler_RejectsOversize(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	h := &UploadHandler{Files: store, MaxBytes: 128}

	body, contentType := multipartBody(t, "file", "big.png", "image/png", bytes.Repeat([]byte("x"), 4096))
	req := httptest.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.Upload(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Upload status: got %d, want 400", rr.Code)
	}
}
