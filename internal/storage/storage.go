// Package storage presigns direct-to-bucket uploads on S3 compatible storage.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultExpiry = 15 * time.Minute

type Options struct {
	Bucket    string
	Region    string
	Endpoint  string // empty means AWS; set for MinIO and friends
	AccessKey string
	SecretKey string
	Expiry    time.Duration
}

// Upload is a presigned PUT the client performs itself.
type Upload struct {
	URL       string `json:"upload_url"`
	Key       string `json:"key"`
	PublicURL string `json:"public_url"`
	ExpiresIn int    `json:"expires_in"`
}

type Presigner struct {
	client   *s3.PresignClient
	bucket   string
	region   string
	endpoint string
	expiry   time.Duration
}

func New(ctx context.Context, opts Options) (*Presigner, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimRight(opts.Endpoint, "/")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	expiry := opts.Expiry
	if expiry <= 0 {
		expiry = DefaultExpiry
	}

	return &Presigner{
		client:   s3.NewPresignClient(client),
		bucket:   opts.Bucket,
		region:   opts.Region,
		endpoint: endpoint,
		expiry:   expiry,
	}, nil
}

func (p *Presigner) PresignPut(ctx context.Context, key, contentType string) (*Upload, error) {
	req, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return nil, fmt.Errorf("presign put %s: %w", key, err)
	}

	return &Upload{
		URL:       req.URL,
		Key:       key,
		PublicURL: p.PublicURL(key),
		ExpiresIn: int(p.expiry.Seconds()),
	}, nil
}

// PublicURL is where an uploaded object is readable when the bucket is public.
func (p *Presigner) PublicURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if p.endpoint != "" {
		return p.endpoint + "/" + p.bucket + "/" + escaped
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, escaped)
}
