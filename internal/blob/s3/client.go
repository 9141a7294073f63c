// Package s3blob exports aged decision-journal rows to S3-compatible object
// storage. MinIO and Cloudflare R2 work too; only the archiver writes here,
// nothing in the trading path reads blobs back.
package s3blob

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ClientConfig holds the archive bucket configuration.
type ClientConfig struct {
	// Endpoint overrides the AWS default for compatible providers. Leave
	// empty for AWS S3 proper.
	Endpoint string

	Region string

	// Bucket receives all decision archives.
	Bucket string

	AccessKey string
	SecretKey string

	// UseSSL selects the scheme when Endpoint is given without one.
	UseSSL bool

	// ForcePathStyle puts the bucket in the URL path instead of the
	// subdomain. MinIO needs it.
	ForcePathStyle bool
}

// Client holds the configured SDK client and the archive bucket name.
type Client struct {
	s3     *s3.Client
	bucket string
}

// New builds the SDK client with static credentials. Misconfiguration that
// only shows up on the first PutObject is acceptable here: the archiver
// retries on its next interval and the trading path never blocks on it.
func New(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3blob: bucket name is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3blob: region is required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("s3blob: load aws config: %w", err)
	}

	sdk := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(withScheme(cfg.Endpoint, cfg.UseSSL))
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &Client{s3: sdk, bucket: cfg.Bucket}, nil
}

// Close is a no-op; the SDK's HTTP client needs no teardown. It exists so
// the client fits the wiring's closer stack.
func (c *Client) Close() error {
	return nil
}

// withScheme prepends https:// or http:// when the endpoint lacks a scheme.
func withScheme(endpoint string, useSSL bool) string {
	parsed, err := url.Parse(endpoint)
	if err == nil && parsed.Scheme != "" {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}
