package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store implements FileStore against a MinIO/S3 bucket. References are full
// object URLs so the client can load images straight from the bucket.
type S3Store struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// S3Config carries the connection settings for the bucket.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewS3Store connects to the endpoint and creates the bucket when missing.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
		slog.Info("created upload bucket", "bucket", cfg.Bucket)
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: fmt.Sprintf("%s://%s/%s/", scheme, cfg.Endpoint, cfg.Bucket),
	}, nil
}

func (s *S3Store) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", name, err)
	}
	return s.baseURL + name, nil
}

func (s *S3Store) Delete(ctx context.Context, ref string) error {
	name := s.objectName(ref)
	err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return ErrNotFound
		}
		return fmt.Errorf("remove object %q: %w", name, err)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context) ([]Object, error) {
	var objs []Object
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		objs = append(objs, Object{Ref: s.baseURL + obj.Key, ModTime: obj.LastModified})
	}
	return objs, nil
}

// objectName strips the base URL off a stored reference. References written
// by other deployments (different base URL) pass through unchanged.
func (s *S3Store) objectName(ref string) string {
	if len(ref) > len(s.baseURL) && ref[:len(s.baseURL)] == s.baseURL {
		return ref[len(s.baseURL):]
	}
	return ref
}
