package document

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// =============================================================================
// S3 OBJECT STORE
// =============================================================================

// DefaultLinkTTL is how long presigned links stay valid when the caller does
// not ask for a specific lifetime.
const DefaultLinkTTL = 15 * time.Minute

// Presigner hands out temporary URLs for direct browser access to the
// bucket. Satisfied by ObjectStore; handlers take the interface so tests can
// swap in a stub.
type Presigner interface {
	UploadURL(ctx context.Context, d *Document, ttl time.Duration) (string, error)
	DownloadURL(ctx context.Context, d *Document, ttl time.Duration) (string, error)
}

// StoreConfig carries the AWS settings for the document bucket.
type StoreConfig struct {
	Profile    string // Primarily for dev purposes
	Region     string
	BucketName string
}

// ObjectStore wraps the S3 client and its presigner for one bucket.
type ObjectStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

// NewObjectStore creates an S3-backed object store for document files.
func NewObjectStore(ctx context.Context, cfg StoreConfig) (*ObjectStore, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("object store requires a bucket name")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &ObjectStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.BucketName,
	}, nil
}

// UploadURL presigns a PUT for the document's object key so the browser can
// upload straight to the bucket.
func (o *ObjectStore) UploadURL(ctx context.Context, d *Document, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	in := &s3.PutObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(d.ObjectKey),
	}
	if d.ContentType != "" {
		in.ContentType = aws.String(d.ContentType)
	}
	req, err := o.presigner.PresignPutObject(ctx, in, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload for document '%s': %w", d.ID, err)
	}
	return req.URL, nil
}

// DownloadURL presigns a GET for the document's object key.
func (o *ObjectStore) DownloadURL(ctx context.Context, d *Document, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	req, err := o.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(d.ObjectKey),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign download for document '%s': %w", d.ID, err)
	}
	return req.URL, nil
}
