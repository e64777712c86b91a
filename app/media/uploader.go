// Package media stores product images in S3.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/flowerssaints/storefront/app/config"
)

// MaxImageBytes caps a single upload.
const MaxImageBytes = 5 << 20

var (
	ErrUnsupportedType = errors.New("only image uploads are accepted")
	ErrStorageDisabled = errors.New("image storage is not configured")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
}

// S3API is the subset of the S3 client used for uploads.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Uploader struct {
	client        S3API
	bucket        string
	region        string
	publicBaseURL string
	newKey        func(ext string) string
}

// NewS3Uploader uses static credentials when both keys are set and the
// default AWS credential chain otherwise.
func NewS3Uploader(ctx context.Context, cfg config.StorageConfig, accessKey, secretKey string) (*S3Uploader, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3UploaderWithClient(s3.NewFromConfig(awsCfg), cfg.Bucket, region, cfg.PublicBaseURL), nil
}

func NewS3UploaderWithClient(client S3API, bucket, region, publicBaseURL string) *S3Uploader {
	return &S3Uploader{
		client:        client,
		bucket:        bucket,
		region:        region,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		newKey: func(ext string) string {
			return path.Join("products", uuid.NewString()+ext)
		},
	}
}

// Upload stores body under products/<uuid><ext> and returns its public URL.
func (u *S3Uploader) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := extensions[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("image %q exceeds %d bytes", filename, MaxImageBytes)
	}

	key := u.newKey(ext)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
		Metadata: map[string]string{
			"original-filename": path.Base(filename),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return u.PublicURL(key), nil
}

func (u *S3Uploader) PublicURL(key string) string {
	if u.publicBaseURL != "" {
		return u.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}

// Disabled stands in for S3Uploader when no bucket is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrStorageDisabled
}
