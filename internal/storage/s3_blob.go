package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/bobmcallan/symphony/internal/common"
)

// s3API is the subset of the S3 client the store uses.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3BlobStore implements BlobStore on an S3 bucket. The client is built once
// and shared by all requests.
type S3BlobStore struct {
	bucket string
	client s3API
	logger *common.Logger
}

// NewS3BlobStore creates an S3-backed blob store with static credentials.
// A non-empty Endpoint selects path-style addressing for S3-compatible stores.
func NewS3BlobStore(ctx context.Context, logger *common.Logger, config *S3BlobConfig) (*S3BlobStore, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("s3 blob store bucket is required")
	}
	if config.Region == "" {
		return nil, fmt.Errorf("s3 blob store region is required")
	}
	if config.AccessKey == "" || config.SecretKey == "" {
		return nil, fmt.Errorf("s3 blob store access key and secret key are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(config.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKey, config.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Debug().
		Str("bucket", config.Bucket).
		Str("region", config.Region).
		Str("endpoint", config.Endpoint).
		Msg("S3BlobStore initialized")

	return newS3BlobStore(logger, config.Bucket, client), nil
}

func newS3BlobStore(logger *common.Logger, bucket string, client s3API) *S3BlobStore {
	return &S3BlobStore{bucket: bucket, client: client, logger: logger}
}

// Get retrieves an object by key.
func (sb *S3BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := sb.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(sb.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	if out.Body == nil {
		return nil, ErrBlobNotFound
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

// List returns one ListObjectsV2 page.
func (sb *S3BlobStore) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(sb.bucket),
	}
	if opts.Prefix != "" {
		input.Prefix = aws.String(opts.Prefix)
	}
	if opts.Delimiter != "" {
		input.Delimiter = aws.String(opts.Delimiter)
	}
	if opts.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(int32(opts.MaxKeys))
	}
	if opts.Cursor != "" {
		input.ContinuationToken = aws.String(opts.Cursor)
	}

	out, err := sb.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects under %q: %w", opts.Prefix, err)
	}

	result := &ListResult{
		Truncated: aws.ToBool(out.IsTruncated),
	}
	for _, obj := range out.Contents {
		result.Blobs = append(result.Blobs, BlobMetadata{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
		})
	}
	for _, cp := range out.CommonPrefixes {
		if p := aws.ToString(cp.Prefix); p != "" {
			result.CommonPrefixes = append(result.CommonPrefixes, p)
		}
	}
	if result.Truncated {
		result.NextCursor = aws.ToString(out.NextContinuationToken)
	}

	return result, nil
}

// Close releases resources. The SDK client holds nothing that needs closing.
func (sb *S3BlobStore) Close() error {
	return nil
}

// isNotFound reports whether err is a missing-key response.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
