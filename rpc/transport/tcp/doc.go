// Package tcp implements the TCP socket connectors of the cntd transport layer.
// Listening, dialing and socket tuning are TCP specific, everything else (accept
// loop, connection handling, dial retries) comes from the base package.
//
// Socket tuning applied to both accepted and dialed connections:
//
//   - TCPNoDelay: disables Nagle's algorithm. Replies are small and written one
//     per command, so this keeps latency low for interactive clients.
//   - TCPKeepAliveSec: enables keep-alive probes with the given period (0 = off).
//   - TCPLingerSec: SO_LINGER in seconds (< 0 = OS default).
//   - WriteBufferSize / ReadBufferSize: OS socket buffers (0 = OS default).
package tcp
