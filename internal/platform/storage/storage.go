package storage

import "context"

// ObjectStore is the durable blob collaborator. Size and extension limits
// are enforced by the upload path before anything reaches the core.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}
