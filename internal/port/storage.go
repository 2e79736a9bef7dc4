package port

import "context"

// ObjectStorage abstracts the remote blob source for pre-uploaded documents.
// Download returns an error wrapping domain.ErrNotFound when the object does
// not exist.
type ObjectStorage interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}
