// Package minio provides a store.Client for MinIO and other S3-compatible
// object stores.
package minio

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

	"github.com/jmgilman/go/fs/storefs/store"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store is a store.Client backed by a MinIO bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// New creates a MinIO-backed store.
// Returns error if configuration is invalid or the client cannot be built.
// No request is made until the first operation.
func New(cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
	}

	return &Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: store.NormalizePrefix(cfg.Prefix),
	}, nil
}

func (s *Store) objectKey(key string) string {
	return store.JoinPrefix(s.prefix, key)
}

// unavailableCodes are S3 error codes reporting transient server conditions.
var unavailableCodes = map[string]bool{
	"SlowDown":                   true,
	"SlowDownRead":               true,
	"SlowDownWrite":              true,
	"ServiceUnavailable":         true,
	"InternalError":              true,
	"RequestTimeout":             true,
	"XMinioServerNotInitialized": true,
}

// translate maps MinIO errors onto store faults.
func translate(op, key string, err error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NotFound":
		return fmt.Errorf("%s %q: %w", op, key, store.ErrNotExist)
	case unavailableCodes[resp.Code],
		resp.StatusCode >= http.StatusInternalServerError,
		resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s %q: %v", store.ErrUnavailable, op, key, err)
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
	_, err := s.client.PutObject(ctx, s.bucket, s.objectKey(key),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
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
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectKey(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, translate("get", key, err)
	}
	defer func() {
		_ = obj.Close()
	}()

	// GetObject is lazy; a missing key surfaces on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, translate("get", key, err)
	}
	return data, nil
}

// Stat returns metadata for key.
func (s *Store) Stat(ctx context.Context, key string) (store.ObjectInfo, error) {
	if err := checkKey("stat", key); err != nil {
		return store.ObjectInfo{}, err
	}
	info, err := s.client.StatObject(ctx, s.bucket, s.objectKey(key), minio.StatObjectOptions{})
	if err != nil {
		return store.ObjectInfo{}, translate("stat", key, err)
	}
	return store.NewObjectInfo(key, info.Size, info.LastModified), nil
}

// Delete removes the object for key. S3 reports success for absent keys.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := checkKey("delete", key); err != nil {
		return err
	}
	err := s.client.RemoveObject(ctx, s.bucket, s.objectKey(key), minio.RemoveObjectOptions{})
	if err != nil {
		return translate("delete", key, err)
	}
	return nil
}

// ListPrefix lists every key under prefix with a recursive listing. The
// listing starts when the sequence is first ranged and is cancelled when
// the caller stops early.
func (s *Store) ListPrefix(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return store.Once(func(yield func(string, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		strip := ""
		if s.prefix != "" {
			strip = s.prefix + "/"
		}

		for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
			Prefix:    s.objectKey(prefix),
			Recursive: true,
		}) {
			if object.Err != nil {
				yield("", translate("list", prefix, object.Err))
				return
			}
			key := strings.TrimPrefix(object.Key, strip)
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			if !yield(key, nil) {
				return
			}
		}
	})
}

// Compile-time interface check.
var _ store.Client = (*Store)(nil)
