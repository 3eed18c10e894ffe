// Package miniostorage keeps rendered output as objects in a minio bucket
package miniostorage

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
	noSuchKey       = "NoSuchKey"
)

type Options struct {
	Endpoint string
	User     string
	Pass     string
	Secure   bool
	Bucket   string
}

type MinioCache struct {
	bucket string
	client *minio.Client
}

func NewMinioCache(ctx context.Context, opts Options) (*MinioCache, error) {
	bucket := opts.Bucket
	if bucket == "" {
		bucket = "resized-images"
	}

	// подключаемся к минио - создаем клиента
	strg, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.User, opts.Pass, ""),
		Secure: opts.Secure,
	})
	if err != nil {
		return nil, err
	}

	// создаем бакет если его нет
	if err := ensureBucket(ctx, strg, bucket); err != nil {
		return nil, err
	}

	return &MinioCache{bucket: bucket, client: strg}, nil
}

func (s *MinioCache) Get(ctx context.Context, key string) (string, bool, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return missOrErr(err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		return missOrErr(err)
	}

	return string(body), true, nil
}

func (s *MinioCache) Set(ctx context.Context, key, value string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, strings.NewReader(value), int64(len(value)), minio.PutObjectOptions{
		ContentType: contentTypeFor(value),
	})
	return err
}

// Close is a no-op, the minio client holds no persistent connection.
func (s *MinioCache) Close() error { return nil }

func missOrErr(err error) (string, bool, error) {
	if minio.ToErrorResponse(err).Code == noSuchKey {
		return "", false, nil
	}
	return "", false, err
}

func contentTypeFor(value string) string {
	if strings.HasPrefix(value, "<") {
		return contentTypeHTML
	}
	return contentTypeText
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}
