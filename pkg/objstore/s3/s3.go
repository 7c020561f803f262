// Package s3 implements objstore.ObjectStore on any S3-compatible
// endpoint. It is exercised against MinIO in tests and works unchanged
// against AWS S3; pointing it elsewhere is a matter of Endpoint and
// UsePathStyle in the config.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/coverly/coverly/pkg/objstore"
)

// Config holds the connection settings for an S3-compatible backend.
type Config struct {
	// Bucket is the bucket all objects live in. Required.
	Bucket string

	// Region is the signing region. MinIO accepts any value but the
	// SDK insists on one, so it defaults to us-east-1.
	Region string

	// Endpoint overrides the AWS endpoint, e.g. http://localhost:9000
	// for MinIO. Empty means real AWS.
	Endpoint string

	// AccessKey and SecretKey are static credentials. When both are
	// empty the SDK falls back to its default chain (env, profile,
	// instance role).
	AccessKey string
	SecretKey string

	// UsePathStyle addresses the bucket as a path segment instead of a
	// subdomain. MinIO needs this.
	UsePathStyle bool
}

// Store is an ObjectStore backed by a single S3 bucket.
type Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// Ensure Store implements objstore.ObjectStore at compile time.
var _ objstore.ObjectStore = (*Store)(nil)

// New builds a client from the config and verifies nothing; the first
// call that touches the bucket surfaces connectivity problems. Use
// HealthCheck to probe eagerly.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// Put uploads an object. A non-negative size is passed through as
// Content-Length so the SDK can sign without buffering.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("putting object %q: %w", key, err)
	}
	return nil
}

// Get opens the object at key. The caller owns the returned reader.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, *objstore.ObjectInfo, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil, objstore.ErrNotFound
		}
		return nil, nil, fmt.Errorf("getting object %q: %w", key, err)
	}

	info := &objstore.ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		LastModified: aws.ToTime(out.LastModified),
	}

	return out.Body, info, nil
}

// List returns the objects under the given key prefix, sorted by key.
// S3 already returns pages in key order, so no extra sort is needed.
func (s *Store) List(ctx context.Context, prefix string) ([]objstore.ObjectInfo, error) {
	var infos []objstore.ObjectInfo

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing prefix %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			infos = append(infos, objstore.ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	return infos, nil
}

// Copy duplicates the object at src to dst within the bucket.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(url.PathEscape(s.bucket + "/" + src)),
		Key:        aws.String(dst),
	})
	if err != nil {
		if isNotFound(err) {
			return objstore.ErrNotFound
		}
		return fmt.Errorf("copying %q to %q: %w", src, dst, err)
	}
	return nil
}

// Delete removes the object at key. S3's DeleteObject succeeds on
// missing keys, so a HeadObject runs first to keep the ErrNotFound
// contract.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.head(ctx, key); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting object %q: %w", key, err)
	}
	return nil
}

// PresignGet returns a time-limited download URL for the object. The
// existence check runs first; S3 happily signs URLs for keys that do
// not exist.
func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := s.head(ctx, key); err != nil {
		return "", err
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presigning object %q: %w", key, err)
	}

	return req.URL, nil
}

// HealthCheck verifies the bucket is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("head bucket %q: %w", s.bucket, err)
	}
	return nil
}

func (s *Store) head(ctx context.Context, key string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return objstore.ErrNotFound
		}
		return fmt.Errorf("head object %q: %w", key, err)
	}
	return nil
}

// isNotFound matches both shapes the SDK uses for a missing object:
// GetObject returns NoSuchKey, while HeadObject only carries the bare
// 404 as NotFound because HEAD responses have no body to parse.
func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}
