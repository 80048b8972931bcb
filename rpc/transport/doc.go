// Package transport defines the contract between the cntd line protocol server
// and the stream sockets it is served over.
//
// Key Components:
//
//   - IRPCServerTransport: Binds an endpoint, accepts connections and drives one
//     connection handler per socket. Every parsed line is passed to the registered
//     ServerHandleFunc and its reply written back.
//
//   - IRPCClientTransport: Dials a server endpoint for the client package.
//
// The shared implementation lives in the base package; tcp and unix only contribute
// the socket specific parts (listening, dialing, connection tuning).
package transport
