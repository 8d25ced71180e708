package storage

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrina/backend/internal/infrastructure/config"
)

func TestNewS3SnapshotStore_Validation(t *testing.T) {
	t.Run("missing bucket", func(t *testing.T) {
		_, err := NewS3SnapshotStore(config.S3Config{AccessKey: "k", SecretKey: "s"}, "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing credentials", func(t *testing.T) {
		_, err := NewS3SnapshotStore(config.S3Config{Bucket: "carts"}, "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key")
	})

	t.Run("valid config", func(t *testing.T) {
		store, err := NewS3SnapshotStore(config.S3Config{
			Endpoint:     "minio:9000",
			Bucket:       "carts",
			AccessKey:    "k",
			SecretKey:    "s",
			UsePathStyle: true,
		}, "vitrina:", nil)
		require.NoError(t, err)
		assert.Equal(t, "carts", store.Bucket())
	})
}

func TestS3SnapshotStore_ObjectKey(t *testing.T) {
	store := &S3SnapshotStore{keyPrefix: "vitrina:"}
	assert.Equal(t, "vitrina/s1/carrito.json", store.objectKey("s1:carrito"))

	bare := &S3SnapshotStore{}
	assert.Equal(t, "carrito.json", bare.objectKey("carrito"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(errors.New("api error NoSuchKey: gone")))
	assert.False(t, isNotFound(errors.New("connection refused")))
}
