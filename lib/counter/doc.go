// Package counter defines the counter store abstraction used by cntd: a mapping
// from names to signed 64-bit counters that many goroutines increment and
// decrement concurrently, with an occasional bulk reader taking snapshots.
//
// Key Components:
//
//   - ICounterStore: The capability set (Increment, Decrement, Snapshot, GetInfo)
//     implemented by every engine under counter/engines.
//
//   - ISnapshotReader: A read-only view of a store. NewSnapshotReader wraps a store
//     so that reporting and exporting code can poll counters without being able to
//     mutate them.
//
//   - Snapshot: A copy of all counters. Mutating a snapshot never affects the store.
//
//   - Error: The error type returned by engines, carrying a RetCode.
//
// Consistency:
//
//	All engines guarantee that operations on a single key are linearizable and no
//	update is ever lost. They differ in what a Snapshot promises across keys:
//
//	- Global-lock engines (engines/mutex) hold one exclusive lock for every operation,
//	  so a snapshot is atomic: each mutation is either fully before or fully after it.
//
//	- Sharded engines (engines/sharded, engines/cmap) partition the key space so that
//	  writers on different keys never contend. A snapshot walks the partitions one by
//	  one without a global pause. Each value is valid at the instant it was read, but
//	  under concurrent writers the pairs may not correspond to any single instant.
//
//	StoreInfo.Consistency reports which of the two guarantees an engine gives.
//
// Choosing an Engine:
//
//	The global lock is the simplest baseline and is adequate while snapshots are rare
//	and the key space is small enough to keep the lock hold time short. As the number
//	of concurrent writers grows, the sharded engines remove the single point of
//	contention at the cost of snapshot atomicity.
package counter
