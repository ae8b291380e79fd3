package cache

import "context"

// KV is a durable key-value slot used for the local rate snapshot. A file,
// an embedded store or Redis all fit behind it.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
}
