package domain

import "context"

// EventsListPath is the cached path of the public event list.
const EventsListPath = "/events"

// EventPath returns the cached path of a single event page.
func EventPath(slug string) string {
	return "/events/" + slug
}

// PageInvalidator drops cached renderings of the given paths.
type PageInvalidator interface {
	Invalidate(ctx context.Context, paths ...string) error
}

// PageCache holds rendered public responses keyed by path.
// Generation is bumped by every Invalidate. Set stores body only if no
// invalidation happened since gen was read, so a render that raced an admin
// write is never cached.
type PageCache interface {
	PageInvalidator
	Get(path string) ([]byte, bool)
	Generation() uint64
	Set(path string, body []byte, gen uint64) bool
}
