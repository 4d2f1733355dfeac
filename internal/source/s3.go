// Package source reads the CSV object from S3 or an S3-compatible store.
package source

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/JonMunkholm/csvtable/internal/config"
	"github.com/JonMunkholm/csvtable/internal/core"
)

// GetObjectAPI is the subset of *s3.Client used here.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source opens one fixed object. It is safe for concurrent use.
type S3Source struct {
	api    GetObjectAPI
	bucket string
	key    string
}

var _ core.Source = (*S3Source)(nil)

// New builds an S3 client from static credentials. optFns adjust the client
// options after the configured ones are applied.
func New(cfg config.StorageConfig, optFns ...func(*s3.Options)) *S3Source {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return NewWithClient(s3.New(opts, optFns...), cfg.Bucket, cfg.Key)
}

// NewWithClient wraps an existing client.
func NewWithClient(api GetObjectAPI, bucket, key string) *S3Source {
	return &S3Source{api: api, bucket: bucket, key: key}
}

// Describe returns the object URI.
func (s *S3Source) Describe() string {
	return "s3://" + s.bucket + "/" + s.key
}

// Open issues one GetObject call and returns the streaming body. The caller
// must close it.
func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, &core.SourceError{Kind: classify(err), Err: err}
	}

	if out.Body == nil {
		return nil, &core.SourceError{Kind: core.ErrEmptyObject}
	}
	if out.ContentLength != nil && *out.ContentLength == 0 {
		out.Body.Close()
		return nil, &core.SourceError{Kind: core.ErrEmptyObject}
	}

	return out.Body, nil
}

// classify maps an SDK error onto the core source error kinds.
func classify(err error) error {
	var (
		noSuchKey    *types.NoSuchKey
		notFound     *types.NotFound
		noSuchBucket *types.NoSuchBucket
	)
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) || errors.As(err, &noSuchBucket) {
		return core.ErrNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return core.ErrNotFound
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch", "AllAccessDisabled":
			return core.ErrAccessDenied
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return core.ErrNotFound
		case http.StatusForbidden:
			return core.ErrAccessDenied
		}
	}

	return core.ErrTransient
}
