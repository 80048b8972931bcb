package cmap

import (
	"github.com/ValentinKolb/cntd/lib/counter"
	countertesting "github.com/ValentinKolb/cntd/lib/counter/testing"
	"testing"
)

func Test(t *testing.T) {
	countertesting.RunCounterStoreTests(t, "CMap", func() counter.ICounterStore {
		return NewCMapStore()
	})
}

func Benchmark(b *testing.B) {
	countertesting.RunCounterStoreBenchmarks(b, "CMap", func() counter.ICounterStore {
		return NewCMapStore()
	})
}
