package server

import (
	"github.com/ValentinKolb/cntd/rpc/protocol"
)

// IRPCServerAdapter turns parsed command lines into replies.
// Handle is called concurrently from all connections.
type IRPCServerAdapter interface {
	// Handle answers cmd, or perr if the line could not be parsed
	Handle(cmd protocol.Command, perr *protocol.Error) protocol.Reply
}
