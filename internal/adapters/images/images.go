// Package images implements domain.ImageStore on Cloudinary or an S3-compatible bucket.
package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"clubevents/internal/domain"
)

// Config holds configuration for creating an image store.
type Config struct {
	Provider   string // cloudinary, s3 or noop
	Cloudinary CloudinaryConfig
	S3         S3Config
}

// NewImageStore creates an image store from config. Unknown providers fall back to noop.
func NewImageStore(ctx context.Context, config Config, logger *slog.Logger) (domain.ImageStore, error) {
	switch config.Provider {
	case "cloudinary":
		return NewCloudinaryStore(config.Cloudinary)
	case "s3":
		return NewS3Store(ctx, config.S3)
	case "noop":
		return &noopStore{logger: logger}, nil
	default:
		logger.Warn("unknown image provider, using noop", "provider", config.Provider)
		return &noopStore{logger: logger}, nil
	}
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

var errNoopUpload = errors.New("image uploads are disabled")

// noopStore rejects uploads and ignores deletes. Used in development without credentials.
type noopStore struct {
	logger *slog.Logger
}

func (n *noopStore) Upload(_ context.Context, img domain.ImageUpload) (string, error) {
	n.logger.Info("image upload skipped (noop)", "name", img.Name, "folder", img.Folder)
	return "", fmt.Errorf("%s: %w", img.Name, errNoopUpload)
}

func (n *noopStore) DeleteImages(_ context.Context, publicIDs []string) error {
	n.logger.Info("image delete skipped (noop)", "count", len(publicIDs))
	return nil
}

func (n *noopStore) DeleteFolder(_ context.Context, folder string) error {
	n.logger.Info("folder delete skipped (noop)", "folder", folder)
	return nil
}
