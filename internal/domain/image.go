package domain

import "context"

// ImageUpload describes one image to store on the external image host.
type ImageUpload struct {
	Name        string // deterministic public name, e.g. "spring-walk-img1"
	Folder      string // grouping hint, e.g. "event-images/spring-walk"
	ContentType string
	Data        []byte
}

// ImageStore is the external image host. Deletes are best-effort for callers.
type ImageStore interface {
	Upload(ctx context.Context, img ImageUpload) (publicID string, err error)
	DeleteImages(ctx context.Context, publicIDs []string) error
	DeleteFolder(ctx context.Context, folder string) error
}

// ImageFolder returns the storage folder for an event's images.
func ImageFolder(slug string) string {
	return "event-images/" + slug
}
