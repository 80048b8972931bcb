package reporter

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/cntd/lib/counter"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"time"
)

var Logger = logger.GetLogger("reporter")

// Reporter periodically dumps all counters of a snapshot reader to a writer.
type Reporter struct {
	reader   counter.ISnapshotReader
	interval time.Duration
	out      io.Writer
	now      func() time.Time
}

// New creates a reporter that writes a dump of reader to out every interval
func New(reader counter.ISnapshotReader, interval time.Duration, out io.Writer) *Reporter {
	return &Reporter{
		reader:   reader,
		interval: interval,
		out:      out,
		now:      time.Now,
	}
}

// Report writes a single dump. The format is a header line followed by one
// "key: value" line per counter, sorted by key:
//
//	--- 2026-10-18T12:00:00Z (3 counters) ---
//	call.thread.worker.0: 4
//	req.page.17: 2
//	req.page.3: 1
func (r *Reporter) Report() error {
	snap := r.reader.Snapshot()
	header := fmt.Sprintf("--- %s (%d counters) ---\n", r.now().UTC().Format(time.RFC3339), len(snap))
	if _, err := io.WriteString(r.out, header+snap.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Run writes a dump every interval until ctx is cancelled.
// Write errors are logged and do not stop the reporter.
func (r *Reporter) Run(ctx context.Context) error {
	if r.interval <= 0 {
		return fmt.Errorf("invalid report interval %s", r.interval)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	Logger.Infof("Reporting counters every %s", r.interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.Report(); err != nil {
				Logger.Warningf("%v", err)
			}
		}
	}
}
