package sharded

import (
	"github.com/ValentinKolb/cntd/lib/counter"
	"github.com/ValentinKolb/cntd/lib/counter/engines/sharded/internal"
	"github.com/ValentinKolb/cntd/lib/counter/util"
	"runtime"
)

// EngineName is the configuration name of this engine
const EngineName = "sharded"

// --------------------------------------------------------------------------
// Core sharded store structure
// --------------------------------------------------------------------------

// shardedImpl stripes counters over independently locked shards
type shardedImpl struct {
	seed   uint64            // Seed for hash function
	shards []*internal.Shard // Array of shards
}

// Options configures the sharded store during initialization
type Options struct {
	NumShards int // Number of shards (<= 0 = auto)
}

// DefaultOptions returns the default options
func DefaultOptions() *Options {
	return &Options{
		NumShards: 4 * runtime.NumCPU(),
	}
}

// NewShardedStore creates a counter store whose keys are striped over
// independently locked shards (optional options, nil = DefaultOptions).
//
// Thread-safety: This function is not thread-safe and should only be called once
// during initialization.
func NewShardedStore(opts *Options) counter.ICounterStore {
	if opts == nil {
		opts = DefaultOptions()
	}
	numShards := opts.NumShards
	if numShards <= 0 {
		numShards = DefaultOptions().NumShards
	}

	shards := make([]*internal.Shard, numShards)
	for i := range shards {
		shards[i] = internal.NewShard()
	}

	return &shardedImpl{
		seed:   util.GenerateSeed(),
		shards: shards,
	}
}

// shardFor returns the shard responsible for key
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *shardedImpl) shardFor(key string) *internal.Shard {
	return s.shards[util.ShardIndex(util.HashString(key, s.seed), len(s.shards))]
}

func (s *shardedImpl) add(key string, delta int64) (int64, error) {
	if err := counter.ValidateKey(key); err != nil {
		return 0, err
	}
	return s.shardFor(key).Add(key, delta), nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see counter/interface.go)
// --------------------------------------------------------------------------

func (s *shardedImpl) Increment(key string) (int64, error) {
	return s.add(key, 1)
}

func (s *shardedImpl) Decrement(key string) (int64, error) {
	return s.add(key, -1)
}

// Snapshot copies the shards one after another. Only one shard is locked at a
// time, so writers on other shards keep making progress while the copy is taken.
func (s *shardedImpl) Snapshot() counter.Snapshot {
	snap := make(counter.Snapshot)
	for _, shard := range s.shards {
		shard.CopyInto(snap)
	}
	return snap
}

func (s *shardedImpl) GetInfo() counter.StoreInfo {
	shardKeys := make([]int, len(s.shards))
	total := 0
	for i, shard := range s.shards {
		shardKeys[i] = shard.Len()
		total += shardKeys[i]
	}

	return counter.StoreInfo{
		Engine:       EngineName,
		Consistency:  counter.ConsistencyPerKey,
		Keys:         total,
		Shards:       len(s.shards),
		ShardKeys:    shardKeys,
		Distribution: util.NewDistributionStats(shardKeys),
	}
}
