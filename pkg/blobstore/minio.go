package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// MinioGateway は MinIO（S3 互換）をバックエンドにした Gateway 実装です。
type MinioGateway struct {
	client *minio.Client
	bucket string
}

// MinioConfig は MinioGateway の接続設定です。
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinioGateway はクライアントを初期化し、バケットの存在を保証します。
func NewMinioGateway(ctx context.Context, cfg MinioConfig) (*MinioGateway, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioGateway{client: client, bucket: cfg.Bucket}, nil
}

func (g *MinioGateway) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := g.client.PutObject(ctx, g.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("%w: upload of %s: %v", domain.ErrPersistenceFailure, key, err)
	}
	return FormatURI(g.bucket, key), nil
}

func (g *MinioGateway) Get(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	obj, err := g.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: fetch of %s: %v", domain.ErrUpstreamUnavailable, uri, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: read of %s: %v", domain.ErrUpstreamUnavailable, uri, err)
	}
	return data, nil
}

func (g *MinioGateway) PresignedViewURL(ctx context.Context, uri string, ttl time.Duration) (string, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return "", err
	}

	u, err := g.client.PresignedGetObject(ctx, bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign view url for %s: %w", uri, err)
	}
	return u.String(), nil
}

func (g *MinioGateway) PresignedUploadURL(ctx context.Context, uri string, contentType string, ttl time.Duration) (string, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return "", err
	}

	// contentType はアップロード側が合わせる前提。署名には含めない。
	_ = contentType

	u, err := g.client.PresignedPutObject(ctx, bucket, key, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to presign upload url for %s: %w", uri, err)
	}
	return u.String(), nil
}
