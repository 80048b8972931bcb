package testing

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/cntd/lib/counter"
)

// StoreFactory is a function that creates a new instance of an ICounterStore implementation
type StoreFactory func() counter.ICounterStore

// RunCounterStoreTests runs the conformance test suite for an ICounterStore implementation.
// Every engine must pass all of these, regardless of its snapshot consistency.
func RunCounterStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("IncrementDecrement", func(t *testing.T) {
			testIncrementDecrement(t, factory())
		})

		t.Run("NegativeCounters", func(t *testing.T) {
			testNegativeCounters(t, factory())
		})

		t.Run("InvalidKey", func(t *testing.T) {
			testInvalidKey(t, factory())
		})

		t.Run("SingleKeyLinearizability", func(t *testing.T) {
			testSingleKeyLinearizability(t, factory())
		})

		t.Run("IndependentKeyIsolation", func(t *testing.T) {
			testIndependentKeyIsolation(t, factory())
		})

		t.Run("SnapshotCompleteness", func(t *testing.T) {
			testSnapshotCompleteness(t, factory())
		})

		t.Run("SnapshotIsCopy", func(t *testing.T) {
			testSnapshotIsCopy(t, factory())
		})

		t.Run("SnapshotUnderLoad", func(t *testing.T) {
			testSnapshotUnderLoad(t, factory())
		})

		t.Run("SnapshotReader", func(t *testing.T) {
			testSnapshotReader(t, factory())
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustIncrement(t testing.TB, store counter.ICounterStore, key string) int64 {
	v, err := store.Increment(key)
	if err != nil {
		t.Fatalf("Increment(%q) failed: %v", key, err)
	}
	return v
}

func mustDecrement(t testing.TB, store counter.ICounterStore, key string) int64 {
	v, err := store.Decrement(key)
	if err != nil {
		t.Fatalf("Decrement(%q) failed: %v", key, err)
	}
	return v
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testIncrementDecrement(t *testing.T, store counter.ICounterStore) {
	if v := mustIncrement(t, store, "foo"); v != 1 {
		t.Errorf("first Increment = %d, want 1", v)
	}
	if v := mustIncrement(t, store, "foo"); v != 2 {
		t.Errorf("second Increment = %d, want 2", v)
	}
	if v := mustDecrement(t, store, "foo"); v != 1 {
		t.Errorf("Decrement = %d, want 1", v)
	}

	snap := store.Snapshot()
	if snap["foo"] != 1 {
		t.Errorf("Snapshot[foo] = %d, want 1", snap["foo"])
	}
}

func testNegativeCounters(t *testing.T, store counter.ICounterStore) {
	for want := int64(-1); want >= -3; want-- {
		if v := mustDecrement(t, store, "fresh"); v != want {
			t.Errorf("Decrement = %d, want %d", v, want)
		}
	}
	if v := mustIncrement(t, store, "fresh"); v != -2 {
		t.Errorf("Increment after decrements = %d, want -2", v)
	}
}

func testInvalidKey(t *testing.T, store counter.ICounterStore) {
	_, err := store.Increment("")
	var storeErr *counter.Error
	if !errors.As(err, &storeErr) || storeErr.Code != counter.RetCInvalidKey {
		t.Errorf("Increment(\"\") error = %v, want RetCInvalidKey", err)
	}

	_, err = store.Decrement("")
	if !errors.As(err, &storeErr) || storeErr.Code != counter.RetCInvalidKey {
		t.Errorf("Decrement(\"\") error = %v, want RetCInvalidKey", err)
	}

	if len(store.Snapshot()) != 0 {
		t.Errorf("invalid keys must not create counters")
	}
}

// testSingleKeyLinearizability runs K goroutines doing N increments and M decrements
// on one key. No interleaving may lose an update.
func testSingleKeyLinearizability(t *testing.T, store counter.ICounterStore) {
	const (
		k = 50
		n = 100
		m = 30
	)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < n; j++ {
				if _, err := store.Increment("hot"); err != nil {
					t.Errorf("Increment failed: %v", err)
					return
				}
				if j < m {
					if _, err := store.Decrement("hot"); err != nil {
						t.Errorf("Decrement failed: %v", err)
						return
					}
				}
			}
		}()
	}
	close(start)
	wg.Wait()

	// the last write decides the final value, read it through a no-op pair
	mustIncrement(t, store, "hot")
	if v := mustDecrement(t, store, "hot"); v != k*(n-m) {
		t.Errorf("final value = %d, want %d", v, k*(n-m))
	}
	if v := store.Snapshot()["hot"]; v != k*(n-m) {
		t.Errorf("Snapshot[hot] = %d, want %d", v, k*(n-m))
	}
}

func testIndependentKeyIsolation(t *testing.T, store counter.ICounterStore) {
	const (
		workers = 20
		ops     = 500
	)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < ops; j++ {
				if _, err := store.Increment("a"); err != nil {
					t.Errorf("Increment(a) failed: %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < ops; j++ {
				if _, err := store.Decrement("b"); err != nil {
					t.Errorf("Decrement(b) failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	snap := store.Snapshot()
	if snap["a"] != workers*ops {
		t.Errorf("a = %d, want %d", snap["a"], workers*ops)
	}
	if snap["b"] != -workers*ops {
		t.Errorf("b = %d, want %d", snap["b"], -workers*ops)
	}
}

// testSnapshotCompleteness checks that a snapshot taken after all writers have
// quiesced contains exactly the touched keys with their final values.
func testSnapshotCompleteness(t *testing.T, store counter.ICounterStore) {
	const (
		keys    = 200
		workers = 8
	)

	expected := make(map[string]int64, keys)
	for i := 0; i < keys; i++ {
		// key i receives i increments and one decrement per worker
		expected[fmt.Sprintf("key-%d", i)] = int64(workers * (i - 1))
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < keys; i++ {
				key := fmt.Sprintf("key-%d", i)
				for j := 0; j < i; j++ {
					if _, err := store.Increment(key); err != nil {
						t.Errorf("Increment failed: %v", err)
						return
					}
				}
				if _, err := store.Decrement(key); err != nil {
					t.Errorf("Decrement failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	snap := store.Snapshot()
	if len(snap) != len(expected) {
		t.Errorf("Snapshot has %d keys, want %d", len(snap), len(expected))
	}
	for key, want := range expected {
		got, ok := snap[key]
		if !ok {
			t.Errorf("Snapshot is missing key %q", key)
			continue
		}
		if got != want {
			t.Errorf("Snapshot[%q] = %d, want %d", key, got, want)
		}
	}
}

func testSnapshotIsCopy(t *testing.T, store counter.ICounterStore) {
	mustIncrement(t, store, "x")

	snap := store.Snapshot()
	snap["x"] = 100
	snap["injected"] = 1
	delete(snap, "x")

	again := store.Snapshot()
	if again["x"] != 1 {
		t.Errorf("store changed through snapshot: x = %d, want 1", again["x"])
	}
	if _, ok := again["injected"]; ok {
		t.Errorf("store changed through snapshot: unexpected key injected")
	}

	mustIncrement(t, store, "x")
	if _, ok := snap["x"]; ok {
		t.Errorf("snapshot changed through store")
	}
}

// testSnapshotUnderLoad takes snapshots while writers only increment. Every value
// seen must be a valid intermediate count and never decrease between snapshots.
func testSnapshotUnderLoad(t *testing.T, store counter.ICounterStore) {
	const (
		writers = 8
		ops     = 2000
	)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			key := fmt.Sprintf("writer-%d", w)
			for j := 0; j < ops; j++ {
				if _, err := store.Increment(key); err != nil {
					t.Errorf("Increment failed: %v", err)
					return
				}
			}
		}(w)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	last := make(map[string]int64)
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		for key, v := range store.Snapshot() {
			if v < 0 || v > ops {
				t.Fatalf("Snapshot[%q] = %d outside [0, %d]", key, v, ops)
			}
			if v < last[key] {
				t.Fatalf("Snapshot[%q] went backwards: %d -> %d", key, last[key], v)
			}
			last[key] = v
		}
	}

	snap := store.Snapshot()
	for w := 0; w < writers; w++ {
		key := fmt.Sprintf("writer-%d", w)
		if snap[key] != ops {
			t.Errorf("Snapshot[%q] = %d, want %d", key, snap[key], ops)
		}
	}
}

func testSnapshotReader(t *testing.T, store counter.ICounterStore) {
	reader := counter.NewSnapshotReader(store)
	if _, ok := reader.(counter.ICounterStore); ok {
		t.Errorf("snapshot reader must not expose mutation operations")
	}

	mustIncrement(t, store, "r")
	if v := reader.Snapshot()["r"]; v != 1 {
		t.Errorf("reader Snapshot[r] = %d, want 1", v)
	}
}

func testInfo(t *testing.T, store counter.ICounterStore) {
	for i := 0; i < 100; i++ {
		mustIncrement(t, store, fmt.Sprintf("info-%d", i))
	}

	info := store.GetInfo()
	if info.Engine == "" {
		t.Errorf("Info.Engine is empty")
	}
	if info.Keys != 100 {
		t.Errorf("Info.Keys = %d, want 100", info.Keys)
	}
	if info.Shards < 1 {
		t.Errorf("Info.Shards = %d, want >= 1", info.Shards)
	}
	sum := 0
	for _, n := range info.ShardKeys {
		sum += n
	}
	if sum != info.Keys {
		t.Errorf("sum of ShardKeys = %d, want %d", sum, info.Keys)
	}
	if info.Consistency != counter.ConsistencyAtomic && info.Consistency != counter.ConsistencyPerKey {
		t.Errorf("unknown consistency %q", info.Consistency)
	}
}
