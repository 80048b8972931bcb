package producer

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/cntd/lib/counter/engines/sharded"
)

func TestRunProducesExpectedKeys(t *testing.T) {
	store := sharded.NewShardedStore(nil)
	p := New(store, Config{
		TaskWorkers:     2,
		TaskDelayMin:    time.Millisecond,
		TaskDelayMax:    2 * time.Millisecond,
		RequestWorkers:  3,
		RequestDelayMin: time.Millisecond,
		RequestDelayMax: 2 * time.Millisecond,
		Pages:           5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	snap := store.Snapshot()
	if len(snap) == 0 {
		t.Fatal("producers did not write any counter")
	}

	for key, value := range snap {
		if value <= 0 {
			t.Errorf("counter %q = %d, want > 0", key, value)
		}
		switch {
		case strings.HasPrefix(key, TaskKeyPrefix):
			id, err := strconv.Atoi(strings.TrimPrefix(key, TaskKeyPrefix))
			if err != nil || id < 0 || id >= 2 {
				t.Errorf("unexpected task key %q", key)
			}
		case strings.HasPrefix(key, RequestKeyPrefix):
			page, err := strconv.Atoi(strings.TrimPrefix(key, RequestKeyPrefix))
			if err != nil || page < 1 || page > 5 {
				t.Errorf("unexpected request key %q", key)
			}
		default:
			t.Errorf("unexpected key %q", key)
		}
	}

	for i := 0; i < 2; i++ {
		if _, ok := snap[TaskKeyPrefix+strconv.Itoa(i)]; !ok {
			t.Errorf("task worker %d never incremented its counter", i)
		}
	}
}

func TestRunNoWorkers(t *testing.T) {
	p := New(sharded.NewShardedStore(nil), Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	p := New(sharded.NewShardedStore(nil), Config{TaskWorkers: -1})
	if err := p.Run(context.Background()); err == nil {
		t.Fatal("expected an error for a negative worker count")
	}
}

func TestRandomDelay(t *testing.T) {
	for i := 0; i < 1000; i++ {
		d := randomDelay(10*time.Millisecond, 20*time.Millisecond)
		if d < 10*time.Millisecond || d >= 20*time.Millisecond {
			t.Fatalf("randomDelay out of range: %s", d)
		}
	}
	if d := randomDelay(5*time.Millisecond, 5*time.Millisecond); d != 5*time.Millisecond {
		t.Errorf("randomDelay(min == max) = %s, want min", d)
	}
}
