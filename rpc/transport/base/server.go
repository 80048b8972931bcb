package base

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/cntd/rpc/common"
	"github.com/ValentinKolb/cntd/rpc/protocol"
	"github.com/ValentinKolb/cntd/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

var Logger = logger.GetLogger("transport")

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the accept loop and connection bookkeeping
// independent of the specific transport medium (unix, tcp, etc.)
type serverTransport struct {
	connector IServerConnector
	handler   transport.ServerHandleFunc
	config    common.ServerConfig
	listener  net.Listener

	conns      *xsync.MapOf[uint64, *connection] // Open connections by id
	nextConnID atomic.Uint64
	accepted   atomic.Int64
	dropped    atomic.Int64
	closing    atomic.Bool // Set once shutdown started
	wg         sync.WaitGroup
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport with the specified connector
func NewBaseServerTransport(connector IServerConnector) transport.IRPCServerTransport {
	return &serverTransport{
		connector: connector,
		conns:     xsync.NewMapOf[uint64, *connection](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	if t.listener != nil {
		return fmt.Errorf("%s transport is already listening on %s", t.connector.GetName(), t.listener.Addr())
	}
	if config.Transport.MaxLineBytes <= 0 {
		config.Transport.MaxLineBytes = protocol.DefaultMaxLineBytes
	}
	t.config = config

	listener, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	t.listener = listener

	Logger.Infof("Listening for %s connections on %s", t.connector.GetName(), listener.Addr())
	return nil
}

func (t *serverTransport) Serve(ctx context.Context) error {
	if t.listener == nil {
		return errors.New("serve called before listen")
	}
	if t.handler == nil {
		return errors.New("no handler registered")
	}

	// Closing the listener unblocks Accept
	stop := context.AfterFunc(ctx, func() {
		t.closing.Store(true)
		_ = t.listener.Close()
	})
	defer stop()

	err := t.acceptLoop()

	// Close all connections and wait for their goroutines
	t.closing.Store(true)
	_ = t.listener.Close()
	t.conns.Range(func(_ uint64, c *connection) bool {
		_ = c.conn.Close()
		return true
	})
	t.wg.Wait()

	Logger.Infof("Stopped %s server on %s (%d connections accepted, %d dropped)",
		t.connector.GetName(), t.listener.Addr(), t.accepted.Load(), t.dropped.Load())
	return err
}

func (t *serverTransport) Addr() net.Addr {
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

func (t *serverTransport) Stats() transport.ConnStats {
	return transport.ConnStats{
		Active:   int64(t.conns.Size()),
		Accepted: t.accepted.Load(),
		Dropped:  t.dropped.Load(),
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// acceptLoop accepts connections until shutdown (returns nil) or until the
// listener can no longer be used (returns the error)
func (t *serverTransport) acceptLoop() error {
	var backoff time.Duration
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			if t.closing.Load() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("listener on %s closed unexpectedly: %w", t.listener.Addr(), err)
			}

			backoff = nextBackoff(backoff, minAcceptBackoff, maxAcceptBackoff)
			Logger.Warningf("Accept error: %v (retrying in %s)", err, backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		t.accepted.Add(1)
		if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
			Logger.Warningf("Failed to apply %s settings to connection from %s: %v", t.connector.GetName(), conn.RemoteAddr(), err)
		}

		c := newConnection(t.nextConnID.Add(1), conn, t)
		t.conns.Store(c.id, c)
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			defer t.conns.Delete(c.id)
			c.serve()
		}()
	}
}
