// Package sharded implements a lock-striped counter engine. The key space is
// partitioned into a fixed number of shards, each holding its own map guarded by
// its own mutex. Keys are assigned to shards by a seeded FNV-1a hash, so two
// operations on keys in different shards never block each other.
//
// Implementation Details:
//
//   - Shard selection: util.HashString mixes a per-instance random seed into the
//     hash, then util.ShardIndex picks the shard from the higher-quality bits.
//
//   - Mutations lock exactly one shard for a single map read and write.
//
//   - Snapshot copies the shards sequentially, locking one shard at a time. There is
//     no global pause, so under concurrent writers the snapshot is only consistent
//     per key (counter.ConsistencyPerKey): every value was valid when its shard was
//     copied, but values from different shards were read at different instants.
//
// Choosing the Number of Shards:
//
//	The default of 4 × runtime.NumCPU() keeps the probability that two busy keys share
//	a shard low on typical workloads. More shards reduce contention further but make
//	snapshots walk more locks.
package sharded
