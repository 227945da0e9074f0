package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/borrowx/internal/shared"
)

const (
	defaultMultipartThreshold = 100 << 20
	partSize                  = 16 << 20
	uploadConcurrency         = 4
)

// S3Store keeps objects in an S3-compatible bucket.
type S3Store struct {
	client    *s3.Client
	uploader  *manager.Uploader
	bucket    string
	threshold int64
}

// NewS3Store connects to the configured bucket and checks that it exists.
func NewS3Store(ctx context.Context, cfg shared.S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: storage.s3.bucket is required", shared.ErrInvalidConfig)
	}

	opts := []func(*config.LoadOptions) error{}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load aws config: %w", shared.ErrStorage, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Region != "" {
			o.Region = cfg.Region
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return nil, fmt.Errorf("%w: bucket '%s' does not exist", shared.ErrStorage, cfg.Bucket)
		}
		return nil, fmt.Errorf("%w: failed to check if bucket exists: %w", shared.ErrStorage, err)
	}

	threshold := cfg.MultipartThreshold
	if threshold <= 0 {
		threshold = defaultMultipartThreshold
	}

	return &S3Store{
		client: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.Concurrency = uploadConcurrency
			u.PartSize = partSize
		}),
		bucket:    cfg.Bucket,
		threshold: threshold,
	}, nil
}

// Put uploads r. Payloads above the multipart threshold, or of unknown size, go through the multipart uploader.
func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}

	counter := &countingReader{r: r}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        counter,
		ContentType: aws.String(contentType),
	}

	var (
		location string
		err      error
	)
	if size < 0 || size > s.threshold {
		var out *manager.UploadOutput
		out, err = s.uploader.Upload(ctx, input)
		if out != nil {
			location = out.Location
		}
	} else {
		input.ContentLength = aws.Int64(size)
		_, err = s.client.PutObject(ctx, input)
		location = fmt.Sprintf("s3://%s/%s", s.bucket, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to upload %s: %w", shared.ErrStorage, key, err)
	}

	if size >= 0 && counter.n != size {
		s.cleanup(key)
		return nil, fmt.Errorf("%w: %s: expected %d bytes, got %d", shared.ErrStorage, key, size, counter.n)
	}

	return &Object{Key: key, Size: counter.n, ContentType: contentType, Location: location}, nil
}

// Open streams the object body.
func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound") {
			return nil, fmt.Errorf("%w: object %s", shared.ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: failed to open %s: %w", shared.ErrStorage, key, err)
	}
	return out.Body, nil
}

// Delete removes the object.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to delete %s: %w", shared.ErrStorage, key, err)
	}
	return nil
}

func (s *S3Store) cleanup(key string) {
	if err := s.Delete(context.Background(), key); err != nil {
		log.Error("failed to clean up after failed upload", "key", key, "error", err)
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
