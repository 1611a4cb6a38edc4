package kvstore

import "context"

// Store is a small persistent key-value store. Missing keys are omitted
// from Get results rather than reported as errors.
type Store interface {
	Get(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, values map[string]string) error
	Remove(ctx context.Context, keys ...string) error
}
