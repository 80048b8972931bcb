package mutex

import (
	"github.com/ValentinKolb/cntd/lib/counter"
	"github.com/ValentinKolb/cntd/lib/counter/util"
	"maps"
	"sync"
)

// EngineName is the configuration name of this engine
const EngineName = "mutex"

// mutexImpl guards a single map with one exclusive lock
type mutexImpl struct {
	mu   sync.Mutex
	data map[string]int64
}

// NewMutexStore creates a counter store protected by one global lock.
// Every operation, including Snapshot, holds the lock for the duration of its
// in-memory work, so snapshots are atomic across all keys.
func NewMutexStore() counter.ICounterStore {
	return &mutexImpl{
		data: make(map[string]int64),
	}
}

// add applies delta to the counter for key and returns the new value.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *mutexImpl) add(key string, delta int64) (int64, error) {
	if err := counter.ValidateKey(key); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	value := m.data[key] + delta
	m.data[key] = value
	return value, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see counter/interface.go)
// --------------------------------------------------------------------------

func (m *mutexImpl) Increment(key string) (int64, error) {
	return m.add(key, 1)
}

func (m *mutexImpl) Decrement(key string) (int64, error) {
	return m.add(key, -1)
}

func (m *mutexImpl) Snapshot() counter.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.data)
}

func (m *mutexImpl) GetInfo() counter.StoreInfo {
	m.mu.Lock()
	keys := len(m.data)
	m.mu.Unlock()

	return counter.StoreInfo{
		Engine:       EngineName,
		Consistency:  counter.ConsistencyAtomic,
		Keys:         keys,
		Shards:       1,
		ShardKeys:    []int{keys},
		Distribution: util.NewDistributionStats([]int{keys}),
	}
}
