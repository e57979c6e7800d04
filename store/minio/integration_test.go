package minio

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/jmgilman/go/fs/storefs/store"
	"github.com/jmgilman/go/fs/storefs/store/storetest"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testBucket = "test-bucket"

// setupTestMinIO starts a MinIO container and returns a client with an
// empty test bucket.
func setupTestMinIO(t *testing.T) *minio.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     "minioadmin",
			"MINIO_ROOT_PASSWORD": "minioadmin",
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
	}

	minioC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start MinIO container")
	t.Cleanup(func() {
		_ = minioC.Terminate(ctx)
	})

	endpoint, err := minioC.Endpoint(ctx, "")
	require.NoError(t, err, "failed to get container endpoint")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err, "failed to create MinIO client")

	err = client.MakeBucket(ctx, testBucket, minio.MakeBucketOptions{})
	require.NoError(t, err, "failed to create test bucket")

	return client
}

func TestMinioConformance(t *testing.T) {
	client := setupTestMinIO(t)

	// Each store gets its own namespace so every subtest starts empty.
	var n atomic.Int64
	storetest.TestSuiteWithConfig(t, func() store.Client {
		s, err := New(Config{
			Client: client,
			Bucket: testBucket,
			Prefix: fmt.Sprintf("conformance-%d", n.Add(1)),
		})
		require.NoError(t, err)
		return s
	}, storetest.Config{
		// MinIO refuses an object whose name is also a directory object.
		SkipTests: []string{"PutGet/MarkerObjects"},
	})
}

func TestIntegration_MissingBucket(t *testing.T) {
	client := setupTestMinIO(t)

	s, err := New(Config{Client: client, Bucket: "no-such-bucket"})
	require.NoError(t, err)

	err = s.Put(context.Background(), "key", []byte("data"))
	require.ErrorIs(t, err, store.ErrProtocol)
}

func TestIntegration_PrefixIsolation(t *testing.T) {
	client := setupTestMinIO(t)
	ctx := context.Background()

	a, err := New(Config{Client: client, Bucket: testBucket, Prefix: "tenant-a"})
	require.NoError(t, err)
	b, err := New(Config{Client: client, Bucket: testBucket, Prefix: "tenant-b"})
	require.NoError(t, err)

	require.NoError(t, a.Put(ctx, "shared", []byte("a")))
	require.NoError(t, b.Put(ctx, "shared", []byte("b")))

	data, err := a.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	keys, err := store.Collect(b.ListPrefix(ctx, ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, keys)

	_, err = client.StatObject(ctx, testBucket, "tenant-a/shared", minio.StatObjectOptions{})
	assert.NoError(t, err)
}
