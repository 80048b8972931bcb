package testing

import (
	"strconv"
	"sync/atomic"
	"testing"
)

// RunCounterStoreBenchmarks runs the benchmark suite for an ICounterStore implementation.
func RunCounterStoreBenchmarks(b *testing.B, name string, factory StoreFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("IncrementSameKey", func(b *testing.B) {
			benchmarkIncrementSameKey(b, factory)
		})

		b.Run("IncrementDistinctKeys", func(b *testing.B) {
			benchmarkIncrementDistinctKeys(b, factory)
		})

		b.Run("MixedWithSnapshots", func(b *testing.B) {
			benchmarkMixedWithSnapshots(b, factory)
		})

		b.Run("Snapshot", func(b *testing.B) {
			benchmarkSnapshot(b, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchmarkIncrementSameKey(b *testing.B, factory StoreFactory) {
	store := factory()
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = store.Increment("hot")
		}
	})
}

func benchmarkIncrementDistinctKeys(b *testing.B, factory StoreFactory) {
	store := factory()

	// every goroutine writes its own key so different keys are written concurrently
	var worker atomic.Int64
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		key := "worker-" + strconv.FormatInt(worker.Add(1), 10)
		for pb.Next() {
			_, _ = store.Increment(key)
		}
	})
}

func benchmarkMixedWithSnapshots(b *testing.B, factory StoreFactory) {
	store := factory()
	keys := make([]string, 256)
	for i := range keys {
		keys[i] = "req.page." + strconv.Itoa(i+1)
		_, _ = store.Increment(keys[i])
	}

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			// one snapshot per 1000 writes
			if i%1000 == 999 {
				_ = store.Snapshot()
			} else if i%2 == 0 {
				_, _ = store.Increment(keys[i%len(keys)])
			} else {
				_, _ = store.Decrement(keys[i%len(keys)])
			}
			i++
		}
	})
}

func benchmarkSnapshot(b *testing.B, factory StoreFactory) {
	store := factory()
	for i := 0; i < 10_000; i++ {
		_, _ = store.Increment("key-" + strconv.Itoa(i))
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = store.Snapshot()
	}
}
