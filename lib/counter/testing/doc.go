// Package testing provides a conformance test suite and benchmarks for
// counter.ICounterStore implementations.
//
// Every engine runs the same suite from its own *_interface_test.go file:
//
//	func Test(t *testing.T) {
//		countertesting.RunCounterStoreTests(t, "Mutex", func() counter.ICounterStore {
//			return mutex.NewMutexStore()
//		})
//	}
//
// The suite covers increment/decrement semantics, negative counters, key
// validation, single-key linearizability under 50 concurrent goroutines,
// isolation between keys, snapshot completeness after writers quiesce, snapshot
// copy semantics and per-key validity of snapshots taken under load. Guarantees
// that only some engines give (such as atomic snapshots) are tested in the
// engine's own package.
package testing
