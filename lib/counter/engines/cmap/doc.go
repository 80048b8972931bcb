// Package cmap implements a counter engine on top of xsync.MapOf, a concurrent
// hash map that stripes its buckets internally. Each Increment or Decrement is a
// single Compute call, which applies the delta while holding only the lock of the
// key's bucket, so no update is lost.
//
// Snapshot uses Range, which walks the buckets without stopping writers. Like the
// sharded engine it therefore only guarantees per-key consistency. The internal
// bucket layout of xsync is not observable, so GetInfo reports a single shard.
package cmap
