package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ppiankov/credence/internal/model"
)

// Sink stores a rendered report under name and returns its location
type Sink interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// FileSink writes reports into a local directory
type FileSink struct {
	dir string
}

// NewFileSink creates the directory if needed
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Put writes data to dir/name
func (s *FileSink) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	p := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return p, nil
}

// S3Sink uploads reports to an S3-compatible bucket
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Sink builds an S3 client from the report configuration.
// A custom endpoint switches to path-style addressing for MinIO and similar.
func NewS3Sink(ctx context.Context, cfg model.ReportConfig) (*S3Sink, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3 bucket name is required")
	}
	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	prefix := cfg.S3Prefix
	if prefix == "" {
		prefix = "reports"
	}

	return &S3Sink{
		client: client,
		bucket: cfg.S3Bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Put uploads data to prefix/YYYY/MM/name and returns an s3:// URI
func (s *S3Sink) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	now := s.now()
	key := path.Join(s.prefix, fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())), name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report to S3: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// NewSink picks S3 when a bucket is configured, else the local directory
func NewSink(ctx context.Context, cfg model.ReportConfig) (Sink, error) {
	if cfg.S3Bucket != "" {
		return NewS3Sink(ctx, cfg)
	}
	return NewFileSink(cfg.Dir)
}

// Publish renders rec in each format and stores it; it returns the locations
func Publish(ctx context.Context, sink Sink, r *Renderer, rec *model.HistoryRecord, formats ...Format) ([]string, error) {
	slug := Slug(rec)
	var locations []string
	for _, f := range formats {
		data, err := r.Render(rec, f)
		if err != nil {
			return locations, err
		}
		loc, err := sink.Put(ctx, slug+"."+string(f), data, f.ContentType())
		if err != nil {
			return locations, err
		}
		locations = append(locations, loc)
	}
	return locations, nil
}
