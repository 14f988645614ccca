package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionhouse/internal/auctionerrors"
	"auctionhouse/services/helpers"
	"auctionhouse/utils"
)

// maxFilesPerUpload matches the per-auction image cap.
const maxFilesPerUpload = 10

// UploadStore persists uploaded file bytes and returns their public URL.
type UploadStore interface {
	Save(filename, contentType string, data []byte) (string, error)
}

type UploadHandler struct {
	store UploadStore
}

func NewUploadHandler(store UploadStore) *UploadHandler {
	return &UploadHandler{store: store}
}

type UploadedFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

// UploadHandler handles POST /uploads (admin, multipart field "files")
func (h *UploadHandler) UploadFilesHandler(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		helpers.HandleBindError(c, "UploadFilesHandler", err)
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		helpers.HandleServiceError(c, "UploadFilesHandler", auctionerrors.ErrInvalidUpload, map[string]any{"reason": "no files provided"})
		return
	}
	if len(files) > maxFilesPerUpload {
		helpers.HandleServiceError(c, "UploadFilesHandler", auctionerrors.ErrInvalidUpload, map[string]any{"reason": "too many files"})
		return
	}

	uploaded := make([]UploadedFile, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			helpers.HandleServiceError(c, "UploadFilesHandler", err, map[string]any{"filename": fh.Filename})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			helpers.HandleServiceError(c, "UploadFilesHandler", err, map[string]any{"filename": fh.Filename})
			return
		}

		contentType := fh.Header.Get("Content-Type")
		url, err := h.store.Save(fh.Filename, contentType, data)
		if err != nil {
			helpers.HandleServiceError(c, "UploadFilesHandler", err, map[string]any{"filename": fh.Filename})
			return
		}

		uploaded = append(uploaded, UploadedFile{
			Filename: fh.Filename,
			URL:      url,
			Size:     fh.Size,
			Type:     contentType,
		})
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"files": uploaded}, "upload successful")
	helpers.LogSuccess("UploadFilesHandler", "files uploaded", map[string]any{"count": len(uploaded)})
}
