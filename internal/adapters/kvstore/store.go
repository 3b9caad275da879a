// Package kvstore defines the durable key-value store the pipeline keeps
// its cross-invocation state in: scan checkpoints, result caches, and
// credentials. Correctness relies only on atomic per-key get/set.
package kvstore

import (
	"context"
	"time"
)

// Store provides durable byte-valued storage keyed by string.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A positive ttl lets the store expire
	// the key on its own; zero means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error
}
