// Package common provides the configuration structures and the logging setup
// shared by the cntd server, client and command line tools.
//
// Key Components:
//
//   - ServerConfig: Configuration of a server node: counter store engine, line
//     protocol listener (endpoint, socket tuning, line limit), debug HTTP endpoint,
//     periodic reporter and built-in producers.
//
//   - ClientConfig: Configuration for client components, controlling endpoints,
//     timeouts and retry behavior.
//
//   - Logger: Custom logging implementation that plugs into Dragonboat's logger
//     package. Every package declares its logger once with logger.GetLogger and
//     InitLoggers sets the format and level for all of them.
package common
