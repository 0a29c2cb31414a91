// Package storage defines the uniform get/set/contains/del/get_iter
// contract shared by every backend (memory, pebble-based, rockyardkv-based)
// and exposed to the command dispatcher as one handle per server.
package storage

import "github.com/hivekv/hivekv/wire"

// Engine is the storage contract every backend implements. All methods are
// safe to call concurrently from many logical streams; atomicity is
// per-key only, never cross-key or cross-table.
type Engine interface {
	// Get returns the value for (table, key), or the None variant if the
	// key is absent. Never fails on a missing key or table.
	Get(table, key string) (wire.Value, error)
	// Set stores value under (table, key), creating the table if absent,
	// and returns the prior value (or None).
	Set(table, key string, value wire.Value) (wire.Value, error)
	// Contains reports whether (table, key) currently holds a value.
	Contains(table, key string) (bool, error)
	// Del removes (table, key) if present and returns the prior value (or
	// None). Does not error when the key was already absent.
	Del(table, key string) (wire.Value, error)
	// GetIter returns a point-in-time snapshot of every pair in table. An
	// unknown table yields an empty, non-nil slice.
	GetIter(table string) ([]wire.KvPair, error)
	// Close releases any resources held by the engine (file handles,
	// background goroutines). Safe to call once during shutdown.
	Close() error
}
