// Package cache provides byte caches with TTL (in-memory and Redis), the filter
// domain cache built on them, and cross-instance invalidation via PostgreSQL
// LISTEN/NOTIFY.
package cache

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// keyPrefix namespaces every key this service writes.
const keyPrefix = "assetdesk:"

// Store is a byte cache with per-entry TTL.
type Store interface {
	// Get returns the value and true, or false on a miss or expiry.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeletePrefix removes every key starting with prefix and returns how many.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// Key builds a storage key: the namespace stays readable so whole namespaces
// can be flushed, the rest is hashed with BLAKE2b-256 to bound key length.
func Key(namespace, raw string) string {
	sum := blake2b.Sum256([]byte(raw))
	return NamespacePrefix(namespace) + hex.EncodeToString(sum[:])
}

// NamespacePrefix returns the key prefix of a namespace. An empty namespace
// covers every key.
func NamespacePrefix(namespace string) string {
	namespace = strings.Trim(strings.TrimSpace(namespace), ":")
	if namespace == "" {
		return keyPrefix
	}
	return keyPrefix + namespace + ":"
}
