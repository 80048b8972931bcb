// Package server implements the cntd server: it connects a counter store to a
// line protocol transport and runs the optional side components.
//
// Key Components:
//
//   - IRPCServerAdapter: Turns a parsed command line into a reply. The counter
//     adapter (NewCounterServerAdapter) sends INCR and DECR to the store and
//     SNAPSHOT to a read-only snapshot reader, and answers malformed lines with
//     an error reply.
//
//   - RPCServer: Creates the store selected by ServerConfig.Engine, registers the
//     adapter on the transport and runs all components in one oklog/run group.
//
// Components:
//
//	line protocol listener   always
//	debug HTTP endpoint      --debug-endpoint (/metrics, /snapshot, /info, /health)
//	periodic reporter        --report-interval
//	built-in producers       --task-workers, --request-workers
//	signal handler           SIGINT, SIGTERM (Serve only)
//
//	When one component stops, all others are interrupted. A signal triggered
//	shutdown returns nil, a failing component returns its error.
//
// Metrics:
//
//	Every server owns a VictoriaMetrics metric set exposed on /metrics:
//	cntd_commands_total{verb}, cntd_protocol_errors_total,
//	cntd_command_duration_seconds, cntd_connections_active,
//	cntd_connections_accepted_total, cntd_connections_dropped_total,
//	cntd_counters and cntd_http_requests_total{path,status}.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Engine:        "sharded",
//	  TransportType: "tcp",
//	  Transport:     common.ServerTransportConfig{Endpoint: "0.0.0.0:6379"},
//	  DebugEndpoint: "127.0.0.1:9100",
//	  LogLevel:      "info",
//	}
//
//	s, err := server.NewRPCServer(config, tcp.NewTCPServerTransport())
//	if err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	The adapter is called concurrently from all connections. Listen and Run (or
//	Serve) must be called only once.
package server
