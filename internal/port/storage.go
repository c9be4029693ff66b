package port

import (
	"context"
	"io"
)

// PutObjectInput describes an object written to storage.
type PutObjectInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	// ContentDisposition lets presigned downloads keep the export's file name.
	ContentDisposition string
}

// PutObjectOutput is returned after a successful write.
type PutObjectOutput struct {
	Location string
	ETag     string
}

// ObjectStorage stores rendered exports.
type ObjectStorage interface {
	Upload(ctx context.Context, input PutObjectInput) (*PutObjectOutput, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
