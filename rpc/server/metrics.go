package server

import (
	"fmt"
	"github.com/ValentinKolb/cntd/lib/counter"
	"github.com/ValentinKolb/cntd/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"io"
)

// serverMetrics holds the metrics of one server. Every server owns its own set,
// so several servers (e.g. in tests) can live in one process.
type serverMetrics struct {
	set *metrics.Set

	incrCommands     *metrics.Counter
	decrCommands     *metrics.Counter
	snapshotCommands *metrics.Counter
	protocolErrors   *metrics.Counter
	commandDuration  *metrics.Histogram
}

// newServerMetrics creates the metric set. The gauges are evaluated on every
// scrape from the store info and the connection stats.
func newServerMetrics(store counter.ICounterStore, connStats func() transport.ConnStats) *serverMetrics {
	set := metrics.NewSet()

	set.NewGauge(`cntd_counters`, func() float64 {
		return float64(store.GetInfo().Keys)
	})
	set.NewGauge(`cntd_connections_active`, func() float64 {
		return float64(connStats().Active)
	})
	set.NewGauge(`cntd_connections_accepted_total`, func() float64 {
		return float64(connStats().Accepted)
	})
	set.NewGauge(`cntd_connections_dropped_total`, func() float64 {
		return float64(connStats().Dropped)
	})

	return &serverMetrics{
		set:              set,
		incrCommands:     set.NewCounter(`cntd_commands_total{verb="INCR"}`),
		decrCommands:     set.NewCounter(`cntd_commands_total{verb="DECR"}`),
		snapshotCommands: set.NewCounter(`cntd_commands_total{verb="SNAPSHOT"}`),
		protocolErrors:   set.NewCounter(`cntd_protocol_errors_total`),
		commandDuration:  set.NewHistogram(`cntd_command_duration_seconds`),
	}
}

// httpRequest counts one request of the debug endpoint
func (m *serverMetrics) httpRequest(path string, status int) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`cntd_http_requests_total{path=%q,status="%d"}`, path, status)).Inc()
}

// writePrometheus writes the server metrics followed by the process metrics
func (m *serverMetrics) writePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
	metrics.WriteProcessMetrics(w)
}
