package producer

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/cntd/lib/counter"
	"github.com/lni/dragonboat/v4/logger"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"
)

var Logger = logger.GetLogger("producer")

const (
	TaskKeyPrefix    = "call.thread.worker."
	RequestKeyPrefix = "req.page."
)

// Config controls the simulated internal load
type Config struct {
	TaskWorkers     int           // Workers that increment call.thread.worker.<id>
	TaskDelayMin    time.Duration // Minimum pause between two task increments
	TaskDelayMax    time.Duration // Maximum pause between two task increments (exclusive)
	RequestWorkers  int           // Workers that increment req.page.<page>
	RequestDelayMin time.Duration // Minimum pause between two request increments
	RequestDelayMax time.Duration // Maximum pause between two request increments (exclusive)
	Pages           int           // Pages are drawn uniformly from 1..Pages
}

// DefaultConfig returns the delays of long-running task workers and short request workers
func DefaultConfig() Config {
	return Config{
		TaskWorkers:     2,
		TaskDelayMin:    100 * time.Millisecond,
		TaskDelayMax:    5 * time.Second,
		RequestWorkers:  4,
		RequestDelayMin: 50 * time.Millisecond,
		RequestDelayMax: 800 * time.Millisecond,
		Pages:           255,
	}
}

// Producer drives increments directly against a store, bypassing the network path.
type Producer struct {
	store  counter.ICounterStore
	config Config
}

// New creates a producer for store
func New(store counter.ICounterStore, config Config) *Producer {
	if config.Pages <= 0 {
		config.Pages = DefaultConfig().Pages
	}
	return &Producer{
		store:  store,
		config: config,
	}
}

// Run starts all workers and blocks until ctx is cancelled and every worker has returned.
func (p *Producer) Run(ctx context.Context) error {
	if p.config.TaskWorkers < 0 || p.config.RequestWorkers < 0 {
		return fmt.Errorf("invalid worker count (tasks=%d, requests=%d)", p.config.TaskWorkers, p.config.RequestWorkers)
	}

	Logger.Infof("Starting %d task workers and %d request workers", p.config.TaskWorkers, p.config.RequestWorkers)

	var wg sync.WaitGroup
	for i := 0; i < p.config.TaskWorkers; i++ {
		key := TaskKeyPrefix + strconv.Itoa(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.work(ctx, p.config.TaskDelayMin, p.config.TaskDelayMax, func() string { return key })
		}()
	}
	for i := 0; i < p.config.RequestWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.work(ctx, p.config.RequestDelayMin, p.config.RequestDelayMax, func() string {
				return RequestKeyPrefix + strconv.Itoa(rand.IntN(p.config.Pages)+1)
			})
		}()
	}

	wg.Wait()
	return nil
}

// work sleeps a random delay, then increments the key returned by nextKey, until ctx is done
func (p *Producer) work(ctx context.Context, min, max time.Duration, nextKey func() string) {
	timer := time.NewTimer(randomDelay(min, max))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		key := nextKey()
		if _, err := p.store.Increment(key); err != nil {
			Logger.Warningf("Failed to increment %s: %v", key, err)
		}
		timer.Reset(randomDelay(min, max))
	}
}

// randomDelay returns a uniformly distributed duration in [min, max)
func randomDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + rand.N(max-min)
}
