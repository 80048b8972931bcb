// Package unix implements the Unix domain socket connectors of the cntd transport
// layer, for clients running on the same machine as the server.
//
// The endpoint is a filesystem path. A stale socket file at that path is removed
// before binding and the listener unlinks it again when it is closed.
package unix
