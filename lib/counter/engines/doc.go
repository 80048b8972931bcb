// Package engines selects a counter engine by its configuration name.
//
// Available engines:
//
//   - mutex: one global lock, atomic snapshots (see engines/mutex)
//   - sharded: lock-striped shards, per-key consistent snapshots (see engines/sharded)
//   - cmap: xsync concurrent map, per-key consistent snapshots (see engines/cmap)
package engines
