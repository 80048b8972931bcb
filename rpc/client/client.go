package client

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/cntd/lib/counter"
	"github.com/ValentinKolb/cntd/rpc/common"
	"github.com/ValentinKolb/cntd/rpc/protocol"
	"github.com/ValentinKolb/cntd/rpc/transport"
	"net"
	"sync"
	"time"
)

// ICounterClient is the client side view of a remote counter store
type ICounterClient interface {
	// Increment adds 1 to the remote counter for key and returns the new value
	Increment(key string) (int64, error)
	// Decrement subtracts 1 from the remote counter for key and returns the new value
	Decrement(key string) (int64, error)
	// Snapshot returns all remote counters
	Snapshot() (counter.Snapshot, error)
	// Close closes the connection
	Close() error
}

// NewRPCCounterClient creates a client and connects it to one of the configured endpoints.
//
// A client holds a single connection and sends one command at a time. When a
// request fails with an I/O error the connection is dropped and the next request
// dials again. Requests themselves are never repeated, since INCR and DECR are not
// idempotent.
func NewRPCCounterClient(config common.ClientConfig, transport transport.IRPCClientTransport) (ICounterClient, error) {
	c := &rpcCounterClient{
		config:    config,
		transport: transport,
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

type rpcCounterClient struct {
	config    common.ClientConfig
	transport transport.IRPCClientTransport

	mu     sync.Mutex // Serializes request/reply pairs on the connection
	conn   net.Conn
	reader *protocol.ReplyReader
	buf    []byte
	closed bool
}

// --------------------------------------------------------------------------
// Interface Methods (docu see ICounterClient)
// --------------------------------------------------------------------------

func (c *rpcCounterClient) Increment(key string) (int64, error) {
	return c.mutate(protocol.VerbIncr, key)
}

func (c *rpcCounterClient) Decrement(key string) (int64, error) {
	return c.mutate(protocol.VerbDecr, key)
}

func (c *rpcCounterClient) Snapshot() (snap counter.Snapshot, err error) {
	err = c.do(protocol.Command{Verb: protocol.VerbSnapshot}, func(r *protocol.ReplyReader) (err error) {
		snap, err = r.ReadSnapshot()
		return err
	})
	return snap, err
}

func (c *rpcCounterClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (c *rpcCounterClient) mutate(verb protocol.Verb, key string) (value int64, err error) {
	if err := protocol.ValidateKey(key); err != nil {
		return 0, err
	}
	err = c.do(protocol.Command{Verb: verb, Key: key}, func(r *protocol.ReplyReader) (err error) {
		value, err = r.ReadValue()
		return err
	})
	return value, err
}

// do sends cmd and lets read decode the reply
func (c *rpcCounterClient) do(cmd protocol.Command, read func(r *protocol.ReplyReader) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("client is closed")
	}
	if c.conn == nil {
		if err := c.connect(); err != nil {
			return err
		}
	}

	if c.config.TimeoutSecond > 0 {
		_ = c.conn.SetDeadline(time.Now().Add(time.Duration(c.config.TimeoutSecond) * time.Second))
	}

	c.buf = append(append(c.buf[:0], cmd.String()...), '\r', '\n')
	if _, err := c.conn.Write(c.buf); err != nil {
		c.drop(err)
		return fmt.Errorf("failed to send %s: %w", cmd.Verb, err)
	}

	err := read(c.reader)
	var serr *ServerError
	if err != nil && !errors.As(err, &serr) {
		c.drop(err)
		return fmt.Errorf("failed to read reply to %s: %w", cmd.Verb, err)
	}
	return err
}

// connect dials a new connection. The caller must hold mu or own c exclusively.
func (c *rpcCounterClient) connect() error {
	conn, err := c.transport.Dial(context.Background(), c.config)
	if err != nil {
		return err
	}
	c.conn = conn
	c.reader = protocol.NewReplyReader(conn)
	return nil
}

// drop closes the connection after an I/O error. The caller must hold mu.
func (c *rpcCounterClient) drop(cause error) {
	Logger.Warningf("Dropping connection to %s: %v", c.conn.RemoteAddr(), cause)
	_ = c.conn.Close()
	c.conn = nil
	c.reader = nil
}
