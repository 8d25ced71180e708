package cart

import "context"

// SnapshotStore is the key/value collaborator holding serialized carts
type SnapshotStore interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error
}
