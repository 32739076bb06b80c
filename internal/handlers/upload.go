package handlers

import (
	"context"
	"mime/multipart"
	"net/http"
)

// Uploader is the blob store: bytes in, retrievable URL out.
type Uploader interface {
	UploadImage(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (string, error)
}

type UploadHandler struct {
	uploader Uploader
	sessions SessionValidator
}

func NewUploadHandler(uploader Uploader, sessions SessionValidator) *UploadHandler {
	return &UploadHandler{uploader: uploader, sessions: sessions}
}

// Upload accepts a multipart image and returns its URL. The client
// calls this first, then embeds the URL in the capsule create request.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAuth(w, r, h.sessions); !ok {
		return
	}
	if h.uploader == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{Message: "File uploads are not available"})
		return
	}

	// 10MB cap on capsule images
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeBadRequest(w, "Failed to parse form")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "No file provided")
		return
	}
	defer file.Close()

	url, err := h.uploader.UploadImage(r.Context(), fileHeader, "capsules")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{Message: "Failed to upload file"})
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "File uploaded",
		Data:    map[string]string{"url": url},
	})
}
