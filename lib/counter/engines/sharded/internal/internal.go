package internal

import (
	"sync"
)

// --------------------------------------------------------------------------
// Shard Type (partition of the counter space)
// --------------------------------------------------------------------------

// Shard represents a partition of the counters.
// Each shard has its own independent lock and map.
type Shard struct {
	mu   sync.Mutex
	data map[string]int64
}

// NewShard creates a new empty shard
func NewShard() *Shard {
	return &Shard{
		data: make(map[string]int64),
	}
}

// Add applies delta to the counter for key and returns the new value.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *Shard) Add(key string, delta int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	value := s.data[key] + delta
	s.data[key] = value
	return value
}

// CopyInto copies all counters of this shard into dst while holding only this shard's lock.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *Shard) CopyInto(dst map[string]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range s.data {
		dst[k] = v
	}
}

// Len returns the number of counters in this shard.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *Shard) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
