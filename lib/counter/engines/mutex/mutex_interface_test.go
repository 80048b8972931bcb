package mutex

import (
	"github.com/ValentinKolb/cntd/lib/counter"
	countertesting "github.com/ValentinKolb/cntd/lib/counter/testing"
	"testing"
)

func Test(t *testing.T) {
	countertesting.RunCounterStoreTests(t, "Mutex", func() counter.ICounterStore {
		return NewMutexStore()
	})
}

func Benchmark(b *testing.B) {
	countertesting.RunCounterStoreBenchmarks(b, "Mutex", func() counter.ICounterStore {
		return NewMutexStore()
	})
}
