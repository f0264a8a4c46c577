// Package storage reads configuration objects from Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// DefaultMaxObjectBytes bounds objects read by ObjectReader.
const DefaultMaxObjectBytes = 1 << 20

var (
	// ErrObjectNotFound is returned when the bucket or object does not exist.
	ErrObjectNotFound = errors.New("storage: object not found")
	// ErrObjectTooLarge is returned when the object exceeds the configured limit.
	ErrObjectTooLarge = errors.New("storage: object too large")
)

type openFunc func(ctx context.Context, bucket, object string) (io.ReadCloser, error)

// ObjectReader downloads small objects in full.
type ObjectReader struct {
	open     openFunc
	close    func() error
	maxBytes int64
}

// NewObjectReader dials Cloud Storage with opts.
func NewObjectReader(ctx context.Context, opts ...option.ClientOption) (*ObjectReader, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}
	return &ObjectReader{
		open: func(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
			return client.Bucket(bucket).Object(object).NewReader(ctx)
		},
		close:    client.Close,
		maxBytes: DefaultMaxObjectBytes,
	}, nil
}

// ReadObject returns the full contents of gs://bucket/object.
func (r *ObjectReader) ReadObject(ctx context.Context, bucket, object string) ([]byte, error) {
	bucket, object = strings.TrimSpace(bucket), strings.TrimPrefix(strings.TrimSpace(object), "/")
	if bucket == "" || object == "" {
		return nil, errors.New("storage: bucket and object are required")
	}

	rc, err := r.open(ctx, bucket, object)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return nil, fmt.Errorf("gs://%s/%s: %w", bucket, object, ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open gs://%s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, r.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("storage: read gs://%s/%s: %w", bucket, object, err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, fmt.Errorf("gs://%s/%s: %w", bucket, object, ErrObjectTooLarge)
	}
	return data, nil
}

// Close releases the underlying client.
func (r *ObjectReader) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}
