// Package s3 adapts an S3-compatible blob store (AWS S3, Cloudflare R2,
// MinIO) to the upload workflow. Objects are public by bucket policy; the
// client only derives URLs, it never signs them.
package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint is the service URL, e.g. an R2 account endpoint. Empty means
	// the SDK default (AWS).
	Endpoint string
	Bucket   string
	// PublicBaseURL is the CDN/public origin objects are served from.
	PublicBaseURL string
}

type Client struct {
	uploader      *manager.Uploader
	s3            *awss3.Client
	bucket        string
	publicBaseURL string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("s3: credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}
	if cfg.PublicBaseURL == "" {
		return nil, fmt.Errorf("s3: public base url is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &Client{
		uploader:      manager.NewUploader(client),
		s3:            client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload streams r into the bucket under key and returns the object's public
// URL. No retries beyond what the SDK does internally; the caller decides.
func (c *Client) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	_, err := c.uploader.Upload(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %q: %w", key, err)
	}
	return c.PublicURL(key), nil
}

// Delete removes an object. Best-effort: a missing object is not
// distinguished from success.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %q: %w", key, err)
	}
	return nil
}

// PublicURL is pure string concatenation; it never touches the network.
func (c *Client) PublicURL(key string) string {
	return c.publicBaseURL + "/" + key
}
