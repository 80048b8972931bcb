// Package cmd implements the command-line interface of cntd. It provides a
// hierarchical command structure for running the server and talking to it.
//
// The package is organized into several subpackages:
//
//   - serve: Starts and configures the cntd server
//   - counter: Client commands (incr, decr, snapshot) and the perf benchmark
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set as an environment variable CNTD_<FLAG> with dashes
// replaced by underscores, or in a .env / .env.local file.
//
// See cntd -help for a list of all commands.
package cmd
