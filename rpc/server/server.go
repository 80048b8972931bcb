package server

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/cntd/lib/counter"
	"github.com/ValentinKolb/cntd/lib/counter/engines"
	"github.com/ValentinKolb/cntd/lib/counter/producer"
	"github.com/ValentinKolb/cntd/lib/counter/reporter"
	"github.com/ValentinKolb/cntd/rpc/common"
	"github.com/ValentinKolb/cntd/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/oklog/run"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"
)

var Logger = logger.GetLogger("server")

const debugShutdownTimeout = 5 * time.Second

// RPCServer serves one counter store over the line protocol. Optionally it also
// runs the debug HTTP endpoint, the periodic reporter and the built-in producers.
type RPCServer struct {
	config    common.ServerConfig
	transport transport.IRPCServerTransport
	store     counter.ICounterStore
	reader    counter.ISnapshotReader
	metrics   *serverMetrics

	debugServer   *http.Server
	debugListener net.Listener
}

// NewRPCServer creates a new RPC server
// It creates the counter store selected by config.Engine and registers the
// command handler on the transport.
//
// Usage:
//
//	s, err := server.NewRPCServer(*config, tcp.NewTCPServerTransport())
//	if err != nil {
//		return err
//	}
//	return s.Serve()
func NewRPCServer(config common.ServerConfig, transport transport.IRPCServerTransport) (*RPCServer, error) {
	store, err := engines.New(config.Engine, config.NumShards)
	if err != nil {
		return nil, err
	}
	return NewRPCServerWithStore(config, transport, store)
}

// NewRPCServerWithStore creates a new RPC server for an existing store
func NewRPCServerWithStore(config common.ServerConfig, transport transport.IRPCServerTransport, store counter.ICounterStore) (*RPCServer, error) {
	if config.Producers.TaskWorkers < 0 || config.Producers.RequestWorkers < 0 {
		return nil, fmt.Errorf("invalid producer worker count (tasks=%d, requests=%d)", config.Producers.TaskWorkers, config.Producers.RequestWorkers)
	}
	if config.ReportIntervalSecond < 0 {
		return nil, fmt.Errorf("invalid report interval %d", config.ReportIntervalSecond)
	}

	s := &RPCServer{
		config:    config,
		transport: transport,
		store:     store,
		reader:    counter.NewSnapshotReader(store),
	}
	s.metrics = newServerMetrics(store, transport.Stats)

	adapter := NewCounterServerAdapter(s.store, s.reader, s.metrics)
	transport.RegisterHandler(adapter.Handle)

	info := store.GetInfo()
	Logger.Infof("Created RPC Server with %s engine (%d shards, %s snapshots)", info.Engine, info.Shards, info.Consistency)
	return s, nil
}

// Store returns the counter store served by s
func (s *RPCServer) Store() counter.ICounterStore {
	return s.store
}

// Listen binds the line protocol endpoint and, if configured, the debug endpoint.
// Bind failures are returned immediately.
func (s *RPCServer) Listen() error {
	if err := s.transport.Listen(s.config); err != nil {
		return err
	}

	if s.config.DebugEndpoint != "" {
		l, err := net.Listen("tcp", s.config.DebugEndpoint)
		if err != nil {
			return fmt.Errorf("failed to bind debug endpoint: %w", err)
		}
		s.debugListener = l
		s.debugServer = &http.Server{
			Handler:           newDebugHandler(s.store, s.reader, s.metrics),
			ReadHeaderTimeout: 5 * time.Second,
		}
		Logger.Infof("Debug endpoint listening on http://%s", l.Addr())
	}
	return nil
}

// Addr returns the bound address of the line protocol endpoint
func (s *RPCServer) Addr() net.Addr {
	return s.transport.Addr()
}

// DebugAddr returns the bound address of the debug endpoint (nil if disabled)
func (s *RPCServer) DebugAddr() net.Addr {
	if s.debugListener == nil {
		return nil
	}
	return s.debugListener.Addr()
}

// Run serves until ctx is cancelled (returns nil) or a component fails (returns
// its error). Listen must have been called before.
func (s *RPCServer) Run(ctx context.Context) error {
	return s.run(ctx)
}

// Serve binds all endpoints and serves until SIGINT or SIGTERM is received.
// A signal triggered shutdown returns nil.
func (s *RPCServer) Serve() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.run(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (s *RPCServer) run(ctx context.Context, signals ...os.Signal) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g run.Group
	{
		g.Add(func() error {
			return s.transport.Serve(ctx)
		}, func(error) {
			cancel()
		})
	}
	if s.debugServer != nil {
		g.Add(func() error {
			if err := s.debugServer.Serve(s.debugListener); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("debug endpoint failed: %w", err)
			}
			return nil
		}, func(error) {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), debugShutdownTimeout)
			defer cancelShutdown()
			_ = s.debugServer.Shutdown(shutdownCtx)
		})
	}
	if s.config.ReportIntervalSecond > 0 {
		r := reporter.New(s.reader, time.Duration(s.config.ReportIntervalSecond)*time.Second, os.Stdout)
		g.Add(func() error {
			return r.Run(ctx)
		}, func(error) {
			cancel()
		})
	}
	if s.config.Producers.TaskWorkers > 0 || s.config.Producers.RequestWorkers > 0 {
		cfg := producer.DefaultConfig()
		cfg.TaskWorkers = s.config.Producers.TaskWorkers
		cfg.RequestWorkers = s.config.Producers.RequestWorkers
		p := producer.New(s.store, cfg)
		g.Add(func() error {
			return p.Run(ctx)
		}, func(error) {
			cancel()
		})
	}
	if len(signals) > 0 {
		g.Add(run.SignalHandler(ctx, signals...))
	}
	{
		g.Add(func() error {
			<-ctx.Done()
			return nil
		}, func(error) {
			cancel()
		})
	}

	err := g.Run()

	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		Logger.Infof("Received %s, shut down", sigErr.Signal)
		return nil
	}
	if err != nil {
		Logger.Errorf("Server stopped: %v", err)
	}
	return err
}
