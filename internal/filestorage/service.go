package filestorage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnsupportedType is returned for uploads whose content is not an accepted image.
var ErrUnsupportedType = errors.New("unsupported image type")

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ImageStore keeps uploaded listing images on local disk.
type ImageStore struct {
	storagePath string // Base path for storing files, e.g., "./uploads"
	logger      *zap.Logger
}

// NewImageStore creates the storage directory if needed.
func NewImageStore(storagePath string, logger *zap.Logger) (*ImageStore, error) {
	if storagePath == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		logger.Error("Failed to create storage path directory", zap.String("path", storagePath), zap.Error(err))
		return nil, fmt.Errorf("failed to create storage path %s: %w", storagePath, err)
	}
	return &ImageStore{storagePath: storagePath, logger: logger.Named("image_store")}, nil
}

// Save stores an uploaded image under subDir with a random name. The type is
// taken from the file content, not from the client's filename or header.
// It returns the path relative to the storage root, e.g. "listings/<uuid>.png".
func (s *ImageStore) Save(fileHeader *multipart.FileHeader, subDir string) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("fileHeader cannot be nil")
	}

	cleanSubDir := filepath.Clean(subDir)
	if cleanSubDir == "." || strings.HasPrefix(cleanSubDir, "..") || filepath.IsAbs(cleanSubDir) {
		return "", fmt.Errorf("invalid subDir path %q", subDir)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	destinationDir := filepath.Join(s.storagePath, cleanSubDir)
	if err := os.MkdirAll(destinationDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", destinationDir, err)
	}

	name := uuid.NewString() + mtype.Extension()
	destinationPath := filepath.Join(destinationDir, name)

	dst, err := os.Create(destinationPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", destinationPath, err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		_ = os.Remove(destinationPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	s.logger.Debug("Image saved", zap.String("path", destinationPath), zap.String("mime", mtype.String()))
	return filepath.ToSlash(filepath.Join(cleanSubDir, name)), nil
}

// Delete removes a stored file given its path relative to the storage root.
// A missing file is not an error.
func (s *ImageStore) Delete(relativePath string) error {
	if relativePath == "" {
		return fmt.Errorf("relative path cannot be empty")
	}
	clean := filepath.Clean(relativePath)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		s.logger.Warn("Attempt to delete file with path traversal", zap.String("relativePath", relativePath))
		return fmt.Errorf("invalid file path for deletion")
	}

	fullPath := filepath.Join(s.storagePath, clean)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	return nil
}
