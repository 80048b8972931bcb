package sharded

import (
	"fmt"
	"testing"
)

func TestDefaultShardCount(t *testing.T) {
	for _, opts := range []*Options{nil, {NumShards: 0}, {NumShards: -3}} {
		info := NewShardedStore(opts).GetInfo()
		if info.Shards != DefaultOptions().NumShards {
			t.Errorf("Shards = %d, want default %d", info.Shards, DefaultOptions().NumShards)
		}
	}
}

func TestKeysAreSpreadOverShards(t *testing.T) {
	store := NewShardedStore(&Options{NumShards: 16})
	for i := 0; i < 10_000; i++ {
		if _, err := store.Increment(fmt.Sprintf("req.page.%d", i)); err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
	}

	info := store.GetInfo()
	if len(info.ShardKeys) != 16 {
		t.Fatalf("len(ShardKeys) = %d, want 16", len(info.ShardKeys))
	}
	for i, n := range info.ShardKeys {
		if n == 0 {
			t.Errorf("shard %d received no keys", i)
		}
	}
	if info.Distribution.DistributionQuality < 0.7 {
		t.Errorf("DistributionQuality = %.2f, want >= 0.7", info.Distribution.DistributionQuality)
	}
}

func TestSameKeySameShard(t *testing.T) {
	store := NewShardedStore(&Options{NumShards: 32}).(*shardedImpl)
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("call.thread.worker.%d", i)
		if store.shardFor(key) != store.shardFor(key) {
			t.Fatalf("key %q maps to different shards", key)
		}
	}
}
