package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore stores uploads in an S3-compatible bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore creates a client for endpoint. The bucket is created by Init.
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init minio client: %w", err)
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

// Init ensures the bucket exists.
func (m *MinioStore) Init(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", m.bucket, err)
	}
	return nil
}

// Save uploads data as object name. size may be -1 when unknown.
func (m *MinioStore) Save(ctx context.Context, name string, data io.Reader, size int64, contentType string) (*Object, error) {
	info, err := m.client.PutObject(ctx, m.bucket, name, data, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("failed to put object %s: %w", name, err)
	}
	return &Object{Destination: m.bucket, Path: path.Join(m.bucket, name), Size: info.Size}, nil
}
