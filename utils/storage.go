package utils

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrStorageDisabled = errors.New("file storage is not configured")

// Storage puts public objects somewhere addressable by URL.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type S3Storage struct {
	bucket   string
	uploader *manager.Uploader
}

func NewS3Storage(ctx context.Context, bucket string) (*S3Storage, error) {
	if bucket == "" {
		return nil, ErrStorageDisabled
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Storage{bucket: bucket, uploader: manager.NewUploader(client)}, nil
}

func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	result, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ACL:         "public-read",
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return result.Location, nil
}
