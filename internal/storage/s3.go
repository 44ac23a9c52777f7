package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"civic-backend/internal/config"
)

// S3 uploads to an S3 compatible bucket with public-read objects.
type S3 struct {
	client    *s3.S3
	uploader  *s3manager.Uploader
	bucket    string
	publicURL string
}

func NewS3(cfg config.S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("S3_BUCKET is required for the s3 storage driver")
	}
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}

	public := cfg.PublicURL
	if public == "" {
		public = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	client := s3.New(sess)
	return &S3{
		client:    client,
		uploader:  s3manager.NewUploaderWithClient(client),
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(public, "/"),
	}, nil
}

func (s *S3) Save(ctx context.Context, folder, filename, contentType string, body io.Reader) (string, error) {
	key := objectName(folder, filename)
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to s3: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}

func (s *S3) Delete(ctx context.Context, url string) error {
	key, err := keyFromURL(s.publicURL, url)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s from s3: %w", key, err)
	}
	return nil
}
