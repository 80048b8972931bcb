package client

import (
	"github.com/ValentinKolb/cntd/rpc/protocol"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("client")
)

// ServerError is an error reply ("-ERR <reason>") sent by the server.
// The connection stays usable after a ServerError.
type ServerError = protocol.ServerError
