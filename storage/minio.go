package storage

import (
	"context"
	"errors"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
)

type minioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIO stages uploads as objects in a MinIO bucket instead of the
// local filesystem.
func NewMinIO(client *minio.Client, bucket string) Storage {
	return &minioStorage{client: client, bucket: bucket}
}

func (m *minioStorage) Save(ctx context.Context, objectName string, r io.Reader, size int64) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, r, size, minio.PutObjectOptions{})
	if err != nil {
		return "", errors.Join(ErrStorage, err)
	}
	return path.Join(m.bucket, objectName), nil
}
