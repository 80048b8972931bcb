// Package rpc provides the network layer of cntd. It carries the line-oriented
// counter protocol between clients and a server that owns a counter store.
//
// The package is organized into several subpackages:
//
//   - common: Configuration structures shared by server, client and transports,
//     and the logger setup used by all components.
//
//   - protocol: The wire format. Parsing of request lines (INCR, DECR, SNAPSHOT),
//     a bounded line decoder, and the encoder and reader for replies.
//
//   - transport: Connection handling with pluggable listeners (TCP, Unix sockets).
//     The base package runs one goroutine per connection and drives each through
//     its read, dispatch and write states.
//
//   - client: A synchronous client implementing the counter operations against
//     a remote server.
//
//   - server: The RPC server. It wires a transport to a counter store, and runs
//     the periodic reporter, the producer workload and the debug HTTP endpoint.
package rpc
