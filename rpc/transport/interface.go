package transport

import (
	"context"
	"github.com/ValentinKolb/cntd/rpc/common"
	"github.com/ValentinKolb/cntd/rpc/protocol"
	"net"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is called by a server transport for every line read from a connection.
// It receives either the parsed command or, if the line was malformed, the protocol
// error (cmd is then the zero value) and returns the reply to send back.
// The function is called concurrently from all connections.
type ServerHandleFunc func(cmd protocol.Command, perr *protocol.Error) protocol.Reply

// ConnStats holds connection counters of a server transport
type ConnStats struct {
	Active   int64 // Connections currently served
	Accepted int64 // Connections accepted since start
	Dropped  int64 // Connections closed because of an I/O error
}

// IRPCServerTransport is the interface for the server side transport layer
type IRPCServerTransport interface {
	// RegisterHandler registers the handler that answers every command line.
	// It must be called before Serve.
	RegisterHandler(handler ServerHandleFunc)
	// Listen binds the configured endpoint. A bind failure is returned immediately.
	Listen(config common.ServerConfig) error
	// Serve accepts connections until ctx is cancelled or the listener becomes unusable.
	// On return all connections have been closed. Serve returns nil after cancellation.
	Serve(ctx context.Context) error
	// Addr returns the bound address (nil before Listen)
	Addr() net.Addr
	// Stats returns the current connection counters
	Stats() ConnStats
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the client side transport layer
type IRPCClientTransport interface {
	// Dial connects to one of the configured endpoints, retrying with backoff
	Dial(ctx context.Context, config common.ClientConfig) (net.Conn, error)
}
