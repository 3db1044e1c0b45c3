package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"mjnutrafit/coaching-api/internal/config"
)

// s3Storage implements ImageStore on an S3-compatible bucket.
type s3Storage struct {
	client     *s3.Client
	bucketName string
	publicBase string
	log        *logrus.Logger
}

// NewS3Storage creates an ImageStore backed by cfg.BucketName.
func NewS3Storage(ctx context.Context, cfg config.S3Config, log *logrus.Logger) (ImageStore, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("s3.bucket_name is required")
	}

	opts := []func(*awsCfg.LoadOptions) error{awsCfg.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsCfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for S3: %w", err)
	}

	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// S3-compatible services such as MinIO need path-style addressing.
			o.UsePathStyle = true
		}
	})

	log.WithFields(logrus.Fields{"endpoint": cfg.Endpoint, "bucket": cfg.BucketName}).Info("S3 image store initialized")

	return &s3Storage{
		client:     s3Client,
		bucketName: cfg.BucketName,
		publicBase: publicBaseURL(cfg),
		log:        log,
	}, nil
}

// publicBaseURL is the prefix object keys are appended to in returned URLs.
func publicBaseURL(cfg config.S3Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.BucketName
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.BucketName, cfg.Region)
	}
}

func (s *s3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %q: %w", key, err)
	}
	return s.publicBase + "/" + key, nil
}

func (s *s3Storage) Delete(ctx context.Context, url string) error {
	key, err := keyFromURL(s.publicBase, url)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	s.log.WithField("key", key).Info("deleted object")
	return nil
}
