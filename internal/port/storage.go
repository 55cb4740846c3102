package port

import (
	"context"
	"io"
)

// UploadInput describes an object to store. Size is optional; Metadata is
// stored as user metadata on the object.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
	Metadata    map[string]string
}

// UploadOutput is the location of a stored object.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage holds resume PDFs. Download returns domain.ErrNotFound when
// the key does not exist, which lets callers probe alternative keys.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
