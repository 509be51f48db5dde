package handlers

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/inkwell/inkwell/internal/metrics"
	"github.com/inkwell/inkwell/internal/storage"
)

// allowedImageTypes are the content types the upload endpoint accepts.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// allowedImageExts are the only extensions a stored name may carry. The
// client's filename is otherwise untrusted; an arbitrary extension would let
// the static file server serve the upload as something other than an image.
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ==========================
// Upload Handler
// ==========================
type UploadHandler struct {
	Files storage.FileStore
	// MaxBytes caps the size of a single uploaded file.
	MaxBytes int64
}

// Upload accepts a multipart form with a "file" field, stores the image, and
// returns the reference to put on a post. Only JPEG, PNG, and GIF pass; the
// stored name is generated, never taken from the client.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)

	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		metrics.IncUploads("rejected")
		JSONError(w, "file too large or malformed form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		metrics.IncUploads("rejected")
		JSONError(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := strings.TrimSpace(strings.Split(header.Header.Get("Content-Type"), ";")[0])
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		metrics.IncUploads("rejected")
		JSONError(w, "only JPEG, PNG, or GIF images are allowed", http.StatusBadRequest)
		return
	}

	// Keep the client's extension only when it is itself an image extension.
	if orig := strings.ToLower(filepath.Ext(header.Filename)); allowedImageExts[orig] {
		ext = orig
	}
	name := uuid.NewString() + ext

	ref, err := h.Files.Save(r.Context(), name, file, header.Size, contentType)
	if err != nil {
		slog.Error("save upload failed", "name", name, "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncUploads("accepted")
	JSON(w, map[string]string{"url": ref})
}
