// Package mutex implements the global-lock counter engine: one sync.Mutex
// guarding one map. It is the simplest engine to reason about and serves as the
// baseline for the sharded engines.
//
// Every operation acquires the lock only for the in-memory map access. Because
// Snapshot copies the whole map while holding the same lock, a snapshot is atomic
// with respect to all Increment and Decrement calls.
//
// Usage Example:
//
//	store := mutex.NewMutexStore()
//	v, err := store.Increment("req.page.1") // v == 1
//	snap := store.Snapshot()                // map[req.page.1:1]
package mutex
