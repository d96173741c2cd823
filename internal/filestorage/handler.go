// File: internal/filestorage/handler.go
package filestorage

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path"

	"estate_backend/internal/common"
	"estate_backend/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	formField   = "images"
	listingsDir = "listings"
)

// UploadResponse lists the public URLs of the stored images, in upload order.
type UploadResponse struct {
	URLs []string `json:"urls"`
}

// Handler serves listing image uploads.
type Handler struct {
	store  *ImageStore
	cfg    *config.Config
	logger *zap.Logger
}

// NewHandler creates a new upload handler.
func NewHandler(store *ImageStore, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{store: store, cfg: cfg, logger: logger}
}

// RegisterRoutes mounts the upload endpoint. Stored files are served by the
// router under UPLOAD_URL_PREFIX.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.POST("/upload/images", authMW, h.uploadImages)
}

func (h *Handler) uploadImages(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.UploadMaxBytes*int64(h.cfg.UploadMaxFiles)+(1<<20))

	form, err := c.MultipartForm()
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithMessage("Invalid multipart form"))
		return
	}
	files := form.File[formField]
	if err := h.checkFiles(files); err != nil {
		common.RespondWithError(c, err)
		return
	}

	saved := make([]string, 0, len(files))
	for _, fh := range files {
		rel, err := h.store.Save(fh, listingsDir)
		if err != nil {
			h.rollback(saved)
			if errors.Is(err, ErrUnsupportedType) {
				common.RespondWithError(c, common.ErrBadRequest.WithMessage("Only jpeg, png, gif and webp images are allowed"))
				return
			}
			h.logger.Error("Failed to store uploaded image", zap.String("filename", fh.Filename), zap.Error(err))
			common.RespondWithError(c, common.ErrInternalServer)
			return
		}
		saved = append(saved, rel)
	}

	urls := make([]string, len(saved))
	for i, rel := range saved {
		urls[i] = path.Join(h.cfg.UploadURLPrefix, rel)
	}
	common.RespondCreated(c, UploadResponse{URLs: urls})
}

func (h *Handler) checkFiles(files []*multipart.FileHeader) error {
	if len(files) == 0 {
		return common.ErrBadRequest.WithMessage("No images uploaded")
	}
	if len(files) > h.cfg.UploadMaxFiles {
		return common.ErrBadRequest.WithMessage(fmt.Sprintf("You can only upload %d images per listing", h.cfg.UploadMaxFiles))
	}
	for _, fh := range files {
		if fh.Size > h.cfg.UploadMaxBytes {
			return common.ErrBadRequest.WithMessage(fmt.Sprintf("Image must be less than %d MB", h.cfg.UploadMaxBytes>>20))
		}
	}
	return nil
}

func (h *Handler) rollback(saved []string) {
	for _, rel := range saved {
		if err := h.store.Delete(rel); err != nil {
			h.logger.Warn("Failed to remove partially uploaded image", zap.String("path", rel), zap.Error(err))
		}
	}
}
