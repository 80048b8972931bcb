package base

import (
	"errors"
	"github.com/ValentinKolb/cntd/rpc/protocol"
	"io"
	"net"
	"sync/atomic"
)

// maxTransientRetries bounds consecutive "not ready" read errors on one connection
const maxTransientRetries = 64

// connState is the state of a connection handler
type connState int32

const (
	stateReading     connState = iota // Waiting for the next complete line
	stateDispatching                  // Running the handler for a line
	stateWriting                      // Writing the reply
	stateClosed                       // Peer closed or server shut down
	stateFailed                       // Terminated by an I/O error
)

func (s connState) String() string {
	switch s {
	case stateReading:
		return "reading"
	case stateDispatching:
		return "dispatching"
	case stateWriting:
		return "writing"
	case stateClosed:
		return "closed"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// connection serves the line protocol on one accepted socket.
// The decoder and encoder buffers belong to the connection, the store is
// only reached through the handler of the parent transport.
type connection struct {
	id     uint64
	conn   net.Conn
	parent *serverTransport
	dec    *protocol.Decoder
	enc    *protocol.Encoder
	state  atomic.Int32
}

func newConnection(id uint64, conn net.Conn, parent *serverTransport) *connection {
	return &connection{
		id:     id,
		conn:   conn,
		parent: parent,
		dec:    protocol.NewDecoder(conn, parent.config.Transport.MaxLineBytes),
		enc:    protocol.NewEncoder(conn),
	}
}

func (c *connection) setState(s connState) {
	c.state.Store(int32(s))
}

func (c *connection) getState() connState {
	return connState(c.state.Load())
}

// serve runs the read, dispatch, write loop until the connection ends.
// A malformed line is answered with an error reply and never ends the loop.
func (c *connection) serve() {
	defer c.conn.Close()
	Logger.Debugf("Connection %d from %s opened", c.id, c.conn.RemoteAddr())

	transient := 0
	for {
		c.setState(stateReading)
		cmd, err := c.dec.ReadCommand()

		var perr *protocol.Error
		switch {
		case err == nil:
		case errors.As(err, &perr):
		case isTransient(err) && transient < maxTransientRetries:
			// already buffered bytes of the line stay in the decoder
			transient++
			continue
		case errors.Is(err, io.EOF):
			c.finish(stateClosed, nil)
			return
		default:
			c.finish(c.classify(), err)
			return
		}
		transient = 0

		c.setState(stateDispatching)
		reply := c.dispatch(cmd, perr)

		c.setState(stateWriting)
		if err := c.enc.WriteReply(reply); err != nil {
			c.finish(c.classify(), err)
			return
		}
	}
}

// dispatch calls the handler. A panic is turned into an error reply for this line.
func (c *connection) dispatch(cmd protocol.Command, perr *protocol.Error) (reply protocol.Reply) {
	defer func() {
		if r := recover(); r != nil {
			Logger.Errorf("Connection %d: panic while handling %q: %v", c.id, cmd.String(), r)
			reply = protocol.NewErrorReply("internal error")
		}
	}()
	return c.parent.handler(cmd, perr)
}

// classify decides the terminal state after an I/O error
func (c *connection) classify() connState {
	if c.parent.closing.Load() {
		return stateClosed
	}
	return stateFailed
}

func (c *connection) finish(state connState, err error) {
	c.setState(state)
	if state == stateFailed {
		c.parent.dropped.Add(1)
		Logger.Warningf("Connection %d from %s failed: %v", c.id, c.conn.RemoteAddr(), err)
		return
	}
	Logger.Debugf("Connection %d from %s closed", c.id, c.conn.RemoteAddr())
}
