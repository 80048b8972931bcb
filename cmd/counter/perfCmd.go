package counter

import (
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/cntd/cmd/util"
	"github.com/ValentinKolb/cntd/lib/counter"
	"github.com/ValentinKolb/cntd/rpc/client"
	"github.com/ValentinKolb/cntd/rpc/common"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for cntd servers",
		Long:    "Runs INCR, DECR and SNAPSHOT load with one connection per thread, reports latency percentiles and verifies that no increment was lost.",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix  = "__perf"
	perfNumThreads = 10
	perfKeySpread  = 100
	perfOps        = 1000
	perfSkip       = make([]string, 0)
)

// perfResult holds the measurements of one benchmark
type perfResult struct {
	name     string
	timer    metrics.Timer
	errors   int64
	duration time.Duration
	skipped  bool
}

func init() {
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. decr,snapshot)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads (each with its own connection) to use for the benchmark"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("Operations per thread and benchmark"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfOps = viper.GetInt("ops")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfKeySpread <= 0 || perfNumThreads <= 0 || perfOps <= 0 {
		return fmt.Errorf("keys, threads and ops must be positive")
	}
	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {
	config := util.GetClientConfig()

	fmt.Println("Performance testing tool for cntd servers")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(config.String())
	fmt.Printf("Threads: %d, Keys: %d, Ops per thread: %d\n", perfNumThreads, perfKeySpread, perfOps)
	fmt.Println()

	// one client per thread
	clients := make([]client.ICounterClient, perfNumThreads)
	for i := range clients {
		t, err := util.GetClientTransport()
		if err != nil {
			return err
		}
		c, err := client.NewRPCCounterClient(*config, t)
		if err != nil {
			return fmt.Errorf("failed to connect thread %d: %w", i, err)
		}
		defer c.Close()
		clients[i] = c
	}

	before, err := rpcClient.Snapshot()
	if err != nil {
		return err
	}

	fmt.Println("starting tests...")
	var results []*perfResult

	incr := runBenchmark("incr", clients, func(c client.ICounterClient, i int) error {
		_, err := c.Increment(perfKey(i))
		return err
	})
	results = append(results, incr)
	printResult(incr)

	// every successful increment must be visible in the snapshot
	if !incr.skipped {
		after, err := rpcClient.Snapshot()
		if err != nil {
			return err
		}
		want := incr.timer.Count()
		if got := perfTotal(after) - perfTotal(before); got != want {
			fmt.Printf("%-20sFAILED: counters grew by %d, expected %d\n", "verify", got, want)
		} else {
			fmt.Printf("%-20sok (%d increments)\n", "verify", want)
		}
	}

	decr := runBenchmark("decr", clients, func(c client.ICounterClient, i int) error {
		_, err := c.Decrement(perfKey(i))
		return err
	})
	results = append(results, decr)
	printResult(decr)

	snap := runBenchmark("snapshot", clients, func(c client.ICounterClient, _ int) error {
		_, err := c.Snapshot()
		return err
	})
	results = append(results, snap)
	printResult(snap)

	if csvPath := viper.GetString("csv"); csvPath != "" {
		if err := writeResultsToCSV(csvPath, results, config); err != nil {
			return err
		}
		fmt.Printf("\nresults written to %s\n", csvPath)
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// runBenchmark calls op perfOps times on every client in parallel and times each call
func runBenchmark(name string, clients []client.ICounterClient, op func(c client.ICounterClient, i int) error) *perfResult {
	result := &perfResult{name: name, timer: metrics.NewTimer()}
	if shouldSkip(name) {
		result.skipped = true
		return result
	}
	defer result.timer.Stop()

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		failedTotal int64
	)
	start := time.Now()
	for t, c := range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var failed int64
			for i := 0; i < perfOps; i++ {
				opStart := time.Now()
				if err := op(c, t*perfOps+i); err != nil {
					failed++
					continue
				}
				result.timer.UpdateSince(opStart)
			}
			mu.Lock()
			failedTotal += failed
			mu.Unlock()
		}()
	}
	wg.Wait()

	result.duration = time.Since(start)
	result.errors = failedTotal
	return result
}

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

func perfKey(i int) string {
	return fmt.Sprintf("%s-%d", perfKeyPrefix, i%perfKeySpread)
}

// perfTotal sums all counters written by the perf tool
func perfTotal(snap counter.Snapshot) int64 {
	var total int64
	for k, v := range snap {
		if strings.HasPrefix(k, perfKeyPrefix+"-") {
			total += v
		}
	}
	return total
}

func opsPerSec(r *perfResult) float64 {
	if r.duration <= 0 {
		return 0
	}
	return float64(r.timer.Count()) / r.duration.Seconds()
}

// printResult prints the result of a benchmark in a formatted way
func printResult(r *perfResult) {
	if r.skipped {
		fmt.Printf("%-20sskipped\n", r.name)
		return
	}

	snap := r.timer.Snapshot()
	ps := snap.Percentiles([]float64{0.5, 0.95, 0.99})
	fmt.Printf("%-20s%.0f ops/sec\tmean %s\tp50 %s\tp95 %s\tp99 %s\tmax %s\terrors %d\n",
		r.name,
		opsPerSec(r),
		time.Duration(snap.Mean()),
		time.Duration(ps[0]),
		time.Duration(ps[1]),
		time.Duration(ps[2]),
		time.Duration(snap.Max()),
		r.errors,
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []*perfResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"Test", "Ops", "Errors", "OpsPerSec", "MeanNs", "P50Ns", "P95Ns", "P99Ns", "MaxNs", "Skipped",
		"Endpoints", "Transport", "Threads", "Keys",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range results {
		snap := r.timer.Snapshot()
		ps := snap.Percentiles([]float64{0.5, 0.95, 0.99})
		row := []string{
			r.name,
			strconv.FormatInt(snap.Count(), 10),
			strconv.FormatInt(r.errors, 10),
			fmt.Sprintf("%.0f", opsPerSec(r)),
			fmt.Sprintf("%.0f", snap.Mean()),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			fmt.Sprintf("%.0f", ps[2]),
			strconv.FormatInt(snap.Max(), 10),
			strconv.FormatBool(r.skipped),
			strings.Join(config.Transport.Endpoints, ";"),
			config.TransportType,
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfKeySpread),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %w", r.name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
