// Package base provides the transport implementation shared by all stream socket
// types (TCP, Unix sockets). Protocol specific parts are injected through the
// IServerConnector and IClientConnector interfaces.
//
// Server:
//
//	serverTransport binds the endpoint in Listen and runs the accept loop in Serve.
//	Every accepted socket gets its own goroutine running a connection handler:
//
//	  Reading -> Dispatching -> Writing -> Reading ...
//
//	with the terminal states Closed (peer closed the stream, or shutdown) and
//	Failed (any other I/O error). A line may arrive in any number of fragments,
//	the decoder buffers until the terminator is seen. Malformed lines are answered
//	with an error reply and the loop continues. Transient read conditions (EAGAIN,
//	EINTR) are retried without losing buffered bytes. A panic in the handler only
//	affects the current line.
//
//	Accept errors are retried with exponential backoff (5ms up to 1s). A listener
//	that was closed outside of a shutdown is reported as an error from Serve.
//
//	Cancelling the context passed to Serve closes the listener and every open
//	connection. Serve returns once all connection goroutines have finished.
//
// Client:
//
//	clientTransport dials the configured endpoints round robin, retrying with an
//	exponential backoff with jitter (starting at 50ms) up to RetryCount attempts.
//
// Thread-safety:
//
//	The store behind the handler is shared by all connections and must be safe for
//	concurrent use. Decoder and encoder buffers are owned by a single connection.
package base
