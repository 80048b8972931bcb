package base

import (
	"bufio"
	"context"
	"errors"
	"github.com/ValentinKolb/cntd/rpc/common"
	"github.com/ValentinKolb/cntd/rpc/protocol"
	"github.com/ValentinKolb/cntd/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

// --------------------------------------------------------------------------
// Test connectors
// --------------------------------------------------------------------------

type testServerConnector struct{}

func (testServerConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	return net.Listen("tcp", config.Transport.Endpoint)
}

func (testServerConnector) GetName() string { return "test" }

func (testServerConnector) UpgradeConnection(net.Conn, common.ServerConfig) error { return nil }

type testClientConnector struct {
	calls atomic.Int32
}

func (c *testClientConnector) Connect(ctx context.Context, endpoint string) (net.Conn, error) {
	c.calls.Add(1)
	var d net.Dialer
	return d.DialContext(ctx, "tcp", endpoint)
}

func (c *testClientConnector) GetName() string { return "test" }

func (c *testClientConnector) UpgradeConnection(net.Conn, common.ClientConfig) error { return nil }

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// echoHandler answers every command with the length of its key and every
// malformed line with the protocol error reason
func echoHandler(cmd protocol.Command, perr *protocol.Error) protocol.Reply {
	if perr != nil {
		return protocol.NewErrorReply(perr.Reason)
	}
	if cmd.Key == "panic" {
		panic("handler panic")
	}
	return protocol.NewValueReply(int64(len(cmd.Key)))
}

// startServer starts a server transport on a random local port and returns it
// together with a function that stops it and returns the result of Serve
func startServer(t *testing.T, handler transport.ServerHandleFunc, maxLineBytes int) (transport.IRPCServerTransport, func() error) {
	t.Helper()

	srv := NewBaseServerTransport(testServerConnector{})
	srv.RegisterHandler(handler)
	require.NoError(t, srv.Listen(common.ServerConfig{
		Transport: common.ServerTransportConfig{Endpoint: "127.0.0.1:0", MaxLineBytes: maxLineBytes},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	var stopped bool
	var result error
	stop := func() error {
		if !stopped {
			stopped = true
			cancel()
			select {
			case result = <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("server did not stop in time")
			}
		}
		return result
	}
	t.Cleanup(func() { _ = stop() })
	return srv, stop
}

func dial(t *testing.T, addr net.Addr) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, bufio.NewReader(conn)
}

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return line
}

// --------------------------------------------------------------------------
// Server tests
// --------------------------------------------------------------------------

func TestServeRoundTrip(t *testing.T) {
	srv, _ := startServer(t, echoHandler, 0)
	conn, r := dial(t, srv.Addr())

	_, err := conn.Write([]byte("INCR abc\r\nBOGUS\nINCR panic\nINCR x\n"))
	require.NoError(t, err)

	assert.Equal(t, "+3\r\n", readLine(t, r))
	assert.Equal(t, "-ERR unknown command \"BOGUS\"\r\n", readLine(t, r))
	assert.Equal(t, "-ERR internal error\r\n", readLine(t, r))
	assert.Equal(t, "+1\r\n", readLine(t, r))
}

func TestServeFragmentedLine(t *testing.T) {
	srv, _ := startServer(t, echoHandler, 0)
	conn, r := dial(t, srv.Addr())

	for _, part := range []string{"IN", "CR fr", "agment", "\r", "\n"} {
		_, err := conn.Write([]byte(part))
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, "+8\r\n", readLine(t, r))
}

func TestServeLineTooLong(t *testing.T) {
	srv, _ := startServer(t, echoHandler, 32)
	conn, r := dial(t, srv.Addr())

	long := make([]byte, 100)
	for i := range long {
		long[i] = 'k'
	}
	_, err := conn.Write(append(append([]byte("INCR "), long...), []byte("\nINCR ok\n")...))
	require.NoError(t, err)

	assert.Equal(t, "-ERR line too long\r\n", readLine(t, r))
	assert.Equal(t, "+2\r\n", readLine(t, r))
}

func TestServeUnterminatedLineAtEOF(t *testing.T) {
	srv, _ := startServer(t, echoHandler, 0)
	conn, r := dial(t, srv.Addr())

	_, err := conn.Write([]byte("INCR abc"))
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	assert.Equal(t, "-ERR unterminated line\r\n", readLine(t, r))
}

func TestConnectionStats(t *testing.T) {
	srv, _ := startServer(t, echoHandler, 0)

	conn1, r1 := dial(t, srv.Addr())
	conn2, r2 := dial(t, srv.Addr())
	for _, c := range []struct {
		conn net.Conn
		r    *bufio.Reader
	}{{conn1, r1}, {conn2, r2}} {
		_, err := c.conn.Write([]byte("INCR a\n"))
		require.NoError(t, err)
		assert.Equal(t, "+1\r\n", readLine(t, c.r))
	}

	stats := srv.Stats()
	assert.Equal(t, int64(2), stats.Active)
	assert.Equal(t, int64(2), stats.Accepted)

	require.NoError(t, conn1.Close())
	assert.Eventually(t, func() bool { return srv.Stats().Active == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestShutdownClosesConnections(t *testing.T) {
	srv, stop := startServer(t, echoHandler, 0)
	conn, r := dial(t, srv.Addr())

	_, err := conn.Write([]byte("INCR a\n"))
	require.NoError(t, err)
	assert.Equal(t, "+1\r\n", readLine(t, r))

	require.NoError(t, stop())

	// the server closed its end
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = r.ReadString('\n')
	assert.Error(t, err)
	assert.Equal(t, int64(0), srv.Stats().Active)
	assert.Equal(t, int64(0), srv.Stats().Dropped)
}

func TestServeRequiresListenAndHandler(t *testing.T) {
	srv := NewBaseServerTransport(testServerConnector{})
	assert.Error(t, srv.Serve(context.Background()))

	require.NoError(t, srv.Listen(common.ServerConfig{
		Transport: common.ServerTransportConfig{Endpoint: "127.0.0.1:0"},
	}))
	defer srv.(*serverTransport).listener.Close()
	assert.Error(t, srv.Serve(context.Background()))
	assert.Error(t, srv.Listen(common.ServerConfig{}))
}

func TestListenBindFailure(t *testing.T) {
	srv, _ := startServer(t, echoHandler, 0)

	other := NewBaseServerTransport(testServerConnector{})
	err := other.Listen(common.ServerConfig{
		Transport: common.ServerTransportConfig{Endpoint: srv.Addr().String()},
	})
	assert.Error(t, err)
}

func TestListenerClosedUnexpectedly(t *testing.T) {
	srv := NewBaseServerTransport(testServerConnector{})
	srv.RegisterHandler(echoHandler)
	require.NoError(t, srv.Listen(common.ServerConfig{
		Transport: common.ServerTransportConfig{Endpoint: "127.0.0.1:0"},
	}))

	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, srv.(*serverTransport).listener.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, net.ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return")
	}
}

// --------------------------------------------------------------------------
// Client tests
// --------------------------------------------------------------------------

func TestClientDial(t *testing.T) {
	srv, _ := startServer(t, echoHandler, 0)

	connector := &testClientConnector{}
	client := NewBaseClientTransport(connector)
	conn, err := client.Dial(context.Background(), common.ClientConfig{
		Transport: common.ClientTransportConfig{Endpoints: []string{srv.Addr().String()}},
	})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("INCR ab\n"))
	require.NoError(t, err)
	assert.Equal(t, "+2\r\n", readLine(t, bufio.NewReader(conn)))
}

func TestClientDialRetries(t *testing.T) {
	// reserve a port and close it again, so nothing listens there
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	connector := &testClientConnector{}
	client := NewBaseClientTransport(connector)
	_, err = client.Dial(context.Background(), common.ClientConfig{
		Transport: common.ClientTransportConfig{Endpoints: []string{addr}, RetryCount: 3},
	})
	assert.Error(t, err)
	assert.Equal(t, int32(3), connector.calls.Load())

	_, err = client.Dial(context.Background(), common.ClientConfig{})
	assert.Error(t, err)
}

// --------------------------------------------------------------------------
// Helper tests
// --------------------------------------------------------------------------

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(syscall.EAGAIN))
	assert.True(t, isTransient(&net.OpError{Op: "read", Err: syscall.EINTR}))
	assert.False(t, isTransient(syscall.ECONNRESET))
	assert.False(t, isTransient(errors.New("other")))
}

func TestNextBackoff(t *testing.T) {
	b := nextBackoff(0, minAcceptBackoff, maxAcceptBackoff)
	assert.Equal(t, 5*time.Millisecond, b)
	b = nextBackoff(b, minAcceptBackoff, maxAcceptBackoff)
	assert.Equal(t, 10*time.Millisecond, b)
	for i := 0; i < 20; i++ {
		b = nextBackoff(b, minAcceptBackoff, maxAcceptBackoff)
	}
	assert.Equal(t, time.Second, b)
}

func TestConnStateString(t *testing.T) {
	assert.Equal(t, "reading", stateReading.String())
	assert.Equal(t, "failed", stateFailed.String())
}
