package infra

import (
	"context"
	"fmt"
	"path"

	"github.com/kmv-events/gallery-backend/internal/ports"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// assetFolder scopes every gallery object under one logical prefix in the bucket.
const assetFolder = "kmv_gallery"

type MinioAssetStore struct {
	client *minio.Client
	bucket string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func NewMinioAssetStore(ctx context.Context, cfg MinioConfig) (ports.AssetStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinioAssetStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioAssetStore) Upload(ctx context.Context, localPath, fileName, contentType string) (*ports.UploadResult, error) {
	key := path.Join(assetFolder, fileName)

	info, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}

	return &ports.UploadResult{
		URL:     fmt.Sprintf("%s/%s/%s", s.client.EndpointURL(), s.bucket, info.Key),
		AssetID: info.Key,
	}, nil
}

func (s *MinioAssetStore) Delete(ctx context.Context, assetID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, assetID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", assetID, err)
	}
	return nil
}
