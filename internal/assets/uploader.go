// Package assets uploads image attachments to the hosted object store and
// returns a retrievable URL. An upload always completes (or fails) before
// the owning todo is persisted, so no todo ever references a missing asset.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/epavlov/todolite/internal/apperr"
	"github.com/epavlov/todolite/internal/config"
	"github.com/epavlov/todolite/internal/logging"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Uploader stores a binary asset and yields a URL for it.
type Uploader interface {
	Upload(ctx context.Context, ownerID, filename string, data []byte) (string, error)
}

// S3Uploader is an Uploader backed by an S3-compatible object store.
type S3Uploader struct {
	bucket       string
	region       string
	baseEndpoint string
	accessKey    string
	secretKey    string
	logger       logging.Logger
}

func NewS3Uploader(cfg *config.Config, logger logging.Logger) *S3Uploader {
	return &S3Uploader{
		bucket:       cfg.S3Bucket,
		region:       cfg.S3Region,
		baseEndpoint: cfg.S3BaseEndpoint,
		accessKey:    cfg.S3AccessKey,
		secretKey:    cfg.S3SecretKey,
		logger:       logger.With("component", "assets"),
	}
}

// StorageKey returns the object key for an owner's uploaded file.
func StorageKey(ownerID, filename string) string {
	return fmt.Sprintf("images/%s/%s", ownerID, filename)
}

func (u *S3Uploader) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(u.region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.accessKey,
			u.secretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(u.baseEndpoint)
	}), nil
}

// Upload puts the bytes at images/{ownerID}/{filename} and returns a
// presigned GET URL for the stored object. Failures surface as
// apperr.ErrUpload carrying the underlying message.
func (u *S3Uploader) Upload(ctx context.Context, ownerID, filename string, data []byte) (string, error) {
	client, err := u.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrUpload, err)
	}

	key := StorageKey(ownerID, filename)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket: &u.bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrUpload, err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &u.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(7*24*time.Hour))
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrUpload, err)
	}

	u.logger.Debug(ctx, "asset uploaded", "key", key, "bytes", len(data))
	return req.URL, nil
}
