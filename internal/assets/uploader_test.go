package assets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epavlov/todolite/internal/apperr"
	"github.com/epavlov/todolite/internal/logging"
)

func newTestUploader() *S3Uploader {
	return &S3Uploader{
		bucket:       "todolite-images",
		region:       "us-east-1",
		baseEndpoint: "http://127.0.0.1:9000/",
		accessKey:    "ak",
		secretKey:    "sk",
		logger:       logging.NewSlogLogger(slog.New(slog.DiscardHandler)),
	}
}

func stubAWSSeams(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	origPre := newS3PresignClient
	origPut := putObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
		newS3PresignClient = origPre
		putObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "images/u1/cat.png", StorageKey("u1", "cat.png"))
}

func TestUpload_PutsThenPresigns(t *testing.T) {
	stubAWSSeams(t)
	u := newTestUploader()

	var putKey string
	var putBody []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		putKey = *in.Key
		var err error
		putBody, err = io.ReadAll(in.Body)
		require.NoError(t, err)
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		require.Equal(t, putKey, *in.Key, "presign must target the uploaded object")
		return &v4.PresignedHTTPRequest{URL: "https://store/" + *in.Key + "?sig=x"}, nil
	}

	url, err := u.Upload(context.Background(), "u1", "cat.png", []byte("pngbytes"))
	require.NoError(t, err)
	assert.Equal(t, "images/u1/cat.png", putKey)
	assert.Equal(t, []byte("pngbytes"), putBody)
	assert.Equal(t, "https://store/images/u1/cat.png?sig=x", url)
}

func TestUpload_PutFailure_WrapsUploadError(t *testing.T) {
	stubAWSSeams(t)
	u := newTestUploader()

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("access denied")
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		t.Fatal("presign must not run when the put failed")
		return nil, nil
	}

	_, err := u.Upload(context.Background(), "u1", "cat.png", []byte("x"))
	assert.ErrorIs(t, err, apperr.ErrUpload)
	assert.Contains(t, err.Error(), "access denied")
}

func TestUpload_PresignFailure_WrapsUploadError(t *testing.T) {
	stubAWSSeams(t)
	u := newTestUploader()

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign boom")
	}

	_, err := u.Upload(context.Background(), "u1", "cat.png", []byte("x"))
	assert.ErrorIs(t, err, apperr.ErrUpload)
}

func TestUpload_ConfigFailure_WrapsUploadError(t *testing.T) {
	stubAWSSeams(t)
	u := newTestUploader()

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no credentials")
	}

	_, err := u.Upload(context.Background(), "u1", "cat.png", []byte("x"))
	assert.ErrorIs(t, err, apperr.ErrUpload)
}
