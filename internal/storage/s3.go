package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const (
	// presignExpiration applies to URLs handed out when the bucket is not public.
	presignExpiration = 24 * time.Hour
	imageCacheControl = "public, max-age=31536000, immutable"
)

// Client hosts generated crest images in one bucket.
type Client struct {
	s3Client  *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string // optional base URL for public bucket (e.g. https://cdn.krestly.com/crests)
}

// NewClient connects to bucket. endpoint is empty for AWS and set for MinIO or R2.
func NewClient(ctx context.Context, endpoint, region, bucket, accessKey, secretKey, publicURL string) (*Client, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	// Without static keys the default chain (env, shared config, instance role) applies
	if accessKey != "" {
		configOpts = append(configOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	// Add custom endpoint if provided (for MinIO/R2)
	if endpoint != "" {
		configOpts = append(configOpts, config.WithBaseEndpoint(endpoint))
	}

	cfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Path-style addressing for MinIO compatibility. Checksums only when required
	// so S3-compatible backends (e.g. Cloudflare R2) work.
	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	log.Info().
		Str("endpoint", endpoint).
		Str("bucket", bucket).
		Bool("public", publicURL != "").
		Msg("Crest image storage initialized")

	return &Client{
		s3Client:  s3Client,
		presigner: s3.NewPresignClient(s3Client),
		bucket:    bucket,
		publicURL: publicURL,
	}, nil
}

// PublicURL joins key onto the public base URL. Empty when the bucket is private.
func (c *Client) PublicURL(key string) string {
	if c.publicURL == "" {
		return ""
	}
	return strings.TrimSuffix(c.publicURL, "/") + "/" + strings.TrimPrefix(key, "/")
}

// PutImage stores one generated image. Keys are never reused, so the object is
// marked immutable for CDNs in front of the bucket.
func (c *Client) PutImage(ctx context.Context, key string, data []byte, contentType string) error {
	if len(data) == 0 {
		return fmt.Errorf("refusing to store empty image %s", key)
	}
	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String(imageCacheControl),
	})
	if err != nil {
		return fmt.Errorf("failed to store image in S3: %w", err)
	}

	log.Debug().
		Str("bucket", c.bucket).
		Str("key", key).
		Int("size", len(data)).
		Msg("Crest image stored")
	return nil
}

// GeneratePresignedURL signs a GET for key, valid for expiration.
func (c *Client) GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiration
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return req.URL, nil
}

// ObjectURL returns the public URL of key, or a presigned one when the bucket is not public.
func (c *Client) ObjectURL(ctx context.Context, key string) (string, error) {
	if url := c.PublicURL(key); url != "" {
		return url, nil
	}
	return c.GeneratePresignedURL(ctx, key, presignExpiration)
}
