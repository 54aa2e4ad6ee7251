package objstore

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store is the object-storage surface the services need. The minio client
// satisfies it in production; tests use the in-memory implementation below.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type s3Store struct {
	client *minio.Client
	bucket string
}

// NewFromEnv connects to the S3-compatible endpoint configured through
// S3_ENDPOINT / S3_ACCESS_KEY / S3_SECRET_KEY / S3_BUCKET.
func NewFromEnv() (Store, error) {
	client, err := minio.New(os.Getenv("S3_ENDPOINT"), &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv("S3_ACCESS_KEY"), os.Getenv("S3_SECRET_KEY"), ""),
		Secure: os.Getenv("S3_USE_SSL") == "1",
	})
	if err != nil {
		return nil, err
	}
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		bucket = "accredia"
	}
	return &s3Store{client: client, bucket: bucket}, nil
}

func (s *s3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (s *s3Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}
