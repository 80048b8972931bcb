package cmap

import (
	"github.com/ValentinKolb/cntd/lib/counter"
	"github.com/ValentinKolb/cntd/lib/counter/util"
	"github.com/puzpuzpuz/xsync/v3"
)

// EngineName is the configuration name of this engine
const EngineName = "cmap"

// cmapImpl keeps all counters in a single concurrent hash map
type cmapImpl struct {
	data *xsync.MapOf[string, int64]
}

// NewCMapStore creates a counter store backed by xsync.MapOf.
// The map shards its buckets internally and serializes updates per bucket,
// so writers on different keys rarely contend.
func NewCMapStore() counter.ICounterStore {
	return &cmapImpl{
		data: xsync.NewMapOf[string, int64](),
	}
}

// add applies delta atomically through Compute, which runs the update function
// while holding the lock of the key's bucket.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *cmapImpl) add(key string, delta int64) (int64, error) {
	if err := counter.ValidateKey(key); err != nil {
		return 0, err
	}

	value, _ := c.data.Compute(key, func(old int64, _ bool) (int64, bool) {
		return old + delta, false
	})
	return value, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see counter/interface.go)
// --------------------------------------------------------------------------

func (c *cmapImpl) Increment(key string) (int64, error) {
	return c.add(key, 1)
}

func (c *cmapImpl) Decrement(key string) (int64, error) {
	return c.add(key, -1)
}

// Snapshot iterates the map without a global pause. Range does not block
// writers, so concurrent updates may or may not be observed.
func (c *cmapImpl) Snapshot() counter.Snapshot {
	snap := make(counter.Snapshot, c.data.Size())
	c.data.Range(func(key string, value int64) bool {
		snap[key] = value
		return true
	})
	return snap
}

func (c *cmapImpl) GetInfo() counter.StoreInfo {
	keys := c.data.Size()
	return counter.StoreInfo{
		Engine:       EngineName,
		Consistency:  counter.ConsistencyPerKey,
		Keys:         keys,
		Shards:       1,
		ShardKeys:    []int{keys},
		Distribution: util.NewDistributionStats([]int{keys}),
	}
}
