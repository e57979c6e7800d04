// Package s3 provides a store.Client for Amazon S3 built on the AWS SDK for
// Go v2.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/jmgilman/go/fs/storefs/store"
)

// API is the subset of *s3.Client used by Store.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Store is a store.Client backed by an S3 bucket.
type Store struct {
	api    API
	bucket string
	prefix string
}

// New creates a store on bucket using api. Every key is nested under prefix.
func New(api API, bucket, prefix string) *Store {
	return &Store{
		api:    api,
		bucket: bucket,
		prefix: store.NormalizePrefix(prefix),
	}
}

// NewFromConfig loads the shared AWS configuration, applies the overrides in
// cfg and creates a store.
func NewFromConfig(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	attempts := cfg.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
		o.RetryMaxAttempts = attempts
	})

	return New(client, cfg.Bucket, cfg.Prefix), nil
}

func (s *Store) objectKey(key string) string {
	return store.JoinPrefix(s.prefix, key)
}

var unavailableCodes = map[string]bool{
	"SlowDown":                 true,
	"ServiceUnavailable":       true,
	"InternalError":            true,
	"RequestTimeout":           true,
	"Throttling":               true,
	"ThrottlingException":      true,
	"RequestThrottled":         true,
	"RequestLimitExceeded":     true,
	"TooManyRequestsException": true,
}

// translate maps SDK errors onto store faults.
func translate(op, key string, err error) error {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return fmt.Errorf("%s %q: %w", op, key, store.ErrNotExist)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch code := apiErr.ErrorCode(); {
		case code == "NoSuchKey" || code == "NotFound":
			return fmt.Errorf("%s %q: %w", op, key, store.ErrNotExist)
		case unavailableCodes[code]:
			return fmt.Errorf("%w: %s %q: %v", store.ErrUnavailable, op, key, err)
		}
	}

	var status interface{ HTTPStatusCode() int }
	if errors.As(err, &status) {
		code := status.HTTPStatusCode()
		if code >= http.StatusInternalServerError || code == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %s %q: %v", store.ErrUnavailable, op, key, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s %q: %v", store.ErrUnavailable, op, key, err)
	}

	return fmt.Errorf("%w: %s %q: %v", store.ErrProtocol, op, key, err)
}

func checkKey(op, key string) error {
	if key == "" {
		return fmt.Errorf("%w: %s: empty key", store.ErrProtocol, op)
	}
	return nil
}

// Put uploads data as the object for key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := checkKey("put", key); err != nil {
		return err
	}
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return translate("put", key, err)
	}
	return nil
}

// Get downloads the object for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey("get", key); err != nil {
		return nil, err
	}
	resp, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return nil, translate("get", key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, translate("get", key, err)
	}
	return data, nil
}

// Stat returns metadata for key using a HEAD request.
func (s *Store) Stat(ctx context.Context, key string) (store.ObjectInfo, error) {
	if err := checkKey("stat", key); err != nil {
		return store.ObjectInfo{}, err
	}
	head, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return store.ObjectInfo{}, translate("stat", key, err)
	}
	return store.NewObjectInfo(key, aws.ToInt64(head.ContentLength), aws.ToTime(head.LastModified)), nil
}

// Delete removes the object for key. S3 reports success for absent keys.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := checkKey("delete", key); err != nil {
		return err
	}
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return translate("delete", key, err)
	}
	return nil
}

// ListPrefix pages through ListObjectsV2 as the sequence is consumed.
func (s *Store) ListPrefix(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return store.Once(func(yield func(string, error) bool) {
		strip := ""
		if s.prefix != "" {
			strip = s.prefix + "/"
		}

		paginator := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(s.objectKey(prefix)),
		})

		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield("", translate("list", prefix, err))
				return
			}
			for _, obj := range page.Contents {
				key := strings.TrimPrefix(aws.ToString(obj.Key), strip)
				if !strings.HasPrefix(key, prefix) {
					continue
				}
				if !yield(key, nil) {
					return
				}
			}
		}
	})
}

// Compile-time interface checks.
var (
	_ store.Client = (*Store)(nil)
	_ API          = (*s3.Client)(nil)
)
