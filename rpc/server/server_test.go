package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/cntd/lib/counter"
	"github.com/ValentinKolb/cntd/lib/counter/engines"
	"github.com/ValentinKolb/cntd/lib/counter/producer"
	"github.com/ValentinKolb/cntd/rpc/common"
	"github.com/ValentinKolb/cntd/rpc/transport/tcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func testConfig(engine string) common.ServerConfig {
	return common.ServerConfig{
		Engine:        engine,
		TransportType: "tcp",
		Transport: common.ServerTransportConfig{
			Endpoint: "127.0.0.1:0",
			TCPConf:  common.TCPConf{TCPNoDelay: true, TCPLingerSec: -1},
		},
		LogLevel: "error",
	}
}

// startServer listens on a random local port and runs s until the test ends
func startServer(t *testing.T, config common.ServerConfig) *RPCServer {
	t.Helper()

	s, err := NewRPCServer(config, tcp.NewTCPServerTransport())
	require.NoError(t, err)
	require.NoError(t, s.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop in time")
		}
	})
	return s
}

type testConn struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dial(t *testing.T, s *RPCServer) *testConn {
	t.Helper()
	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &testConn{t: t, conn: conn, r: bufio.NewReader(conn)}
}

// send writes one line and returns the first reply line
func (c *testConn) send(line string) string {
	c.t.Helper()
	_, err := io.WriteString(c.conn, line+"\r\n")
	require.NoError(c.t, err)
	return c.readLine()
}

func (c *testConn) readLine() string {
	c.t.Helper()
	line, err := c.r.ReadString('\n')
	require.NoError(c.t, err)
	return line
}

// snapshot sends SNAPSHOT and returns all lines up to and including the blank line
func (c *testConn) snapshot() []string {
	c.t.Helper()
	lines := []string{c.send("SNAPSHOT")}
	for lines[len(lines)-1] != "\r\n" {
		lines = append(lines, c.readLine())
	}
	return lines
}

// forEachEngine runs fn against a fresh server for every engine
func forEachEngine(t *testing.T, fn func(t *testing.T, s *RPCServer)) {
	for _, engine := range engines.Names {
		t.Run(engine, func(t *testing.T) {
			fn(t, startServer(t, testConfig(engine)))
		})
	}
}

// --------------------------------------------------------------------------
// Line protocol
// --------------------------------------------------------------------------

func TestProtocolRoundTrip(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *RPCServer) {
		c := dial(t, s)
		assert.Equal(t, "+1\r\n", c.send("INCR foo"))
		assert.Equal(t, "+2\r\n", c.send("INCR foo"))
		assert.Equal(t, "+1\r\n", c.send("DECR foo"))
	})
}

func TestMalformedCommandResilience(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *RPCServer) {
		c := dial(t, s)
		assert.True(t, strings.HasPrefix(c.send("BOGUS"), "-ERR"))
		assert.True(t, strings.HasPrefix(c.send("INCR"), "-ERR"))
		assert.True(t, strings.HasPrefix(c.send("INCR a b"), "-ERR"))
		assert.True(t, strings.HasPrefix(c.send(""), "-ERR"))
		assert.Equal(t, "+1\r\n", c.send("INCR bar"))
	})
}

func TestNegativeCounters(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *RPCServer) {
		c := dial(t, s)
		assert.Equal(t, "+-1\r\n", c.send("DECR x"))
		assert.Equal(t, "+-2\r\n", c.send("DECR x"))
		assert.Equal(t, "+-3\r\n", c.send("DECR x"))
	})
}

func TestConnectionIsolation(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *RPCServer) {
		const perConn = 500

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			c := dial(t, s)
			wg.Add(1)
			go func() {
				defer wg.Done()
				// pipeline all commands, then read all replies
				var sb strings.Builder
				for j := 0; j < perConn; j++ {
					sb.WriteString("INCR shared\n")
				}
				if _, err := io.WriteString(c.conn, sb.String()); err != nil {
					t.Errorf("write failed: %v", err)
					return
				}
				for j := 0; j < perConn; j++ {
					line, err := c.r.ReadString('\n')
					if err != nil || !strings.HasPrefix(line, "+") {
						t.Errorf("unexpected reply %q (err: %v)", line, err)
						return
					}
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, []string{"shared: 1000\r\n", "\r\n"}, dial(t, s).snapshot())
	})
}

func TestSnapshotReply(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *RPCServer) {
		c := dial(t, s)
		assert.Equal(t, []string{"\r\n"}, c.snapshot())

		c.send("INCR b")
		c.send("INCR a")
		c.send("INCR a")
		c.send("DECR c")
		assert.Equal(t, []string{"a: 2\r\n", "b: 1\r\n", "c: -1\r\n", "\r\n"}, c.snapshot())
	})
}

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

func TestNewRPCServerInvalidConfig(t *testing.T) {
	_, err := NewRPCServer(testConfig("unknown"), tcp.NewTCPServerTransport())
	assert.Error(t, err)

	config := testConfig("mutex")
	config.Producers.TaskWorkers = -1
	_, err = NewRPCServer(config, tcp.NewTCPServerTransport())
	assert.Error(t, err)

	config = testConfig("mutex")
	config.ReportIntervalSecond = -1
	_, err = NewRPCServer(config, tcp.NewTCPServerTransport())
	assert.Error(t, err)
}

func TestListenBindFailure(t *testing.T) {
	s := startServer(t, testConfig("mutex"))

	config := testConfig("mutex")
	config.Transport.Endpoint = s.Addr().String()
	other, err := NewRPCServer(config, tcp.NewTCPServerTransport())
	require.NoError(t, err)
	assert.Error(t, other.Listen())
}

func TestProducers(t *testing.T) {
	config := testConfig("sharded")
	config.Producers.RequestWorkers = 2
	s := startServer(t, config)

	assert.Eventually(t, func() bool {
		for k := range s.Store().Snapshot() {
			if strings.HasPrefix(k, producer.RequestKeyPrefix) {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)
}

// --------------------------------------------------------------------------
// Debug endpoint
// --------------------------------------------------------------------------

func httpGet(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestDebugEndpoint(t *testing.T) {
	config := testConfig("sharded")
	config.DebugEndpoint = "127.0.0.1:0"
	s := startServer(t, config)
	require.NotNil(t, s.DebugAddr())
	base := fmt.Sprintf("http://%s", s.DebugAddr())

	c := dial(t, s)
	c.send("INCR foo")
	c.send("INCR foo")
	c.send("DECR bar")
	c.send("BOGUS")

	status, body := httpGet(t, base+"/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok\n", body)

	status, body = httpGet(t, base+"/snapshot")
	assert.Equal(t, http.StatusOK, status)
	var snap counter.Snapshot
	require.NoError(t, json.Unmarshal([]byte(body), &snap))
	assert.Equal(t, counter.Snapshot{"foo": 2, "bar": -1}, snap)

	status, body = httpGet(t, base+"/info")
	assert.Equal(t, http.StatusOK, status)
	var info counter.StoreInfo
	require.NoError(t, json.Unmarshal([]byte(body), &info))
	assert.Equal(t, "sharded", info.Engine)
	assert.Equal(t, counter.ConsistencyPerKey, info.Consistency)
	assert.Equal(t, 2, info.Keys)

	status, _ = httpGet(t, base+"/does-not-exist")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = httpGet(t, base+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `cntd_commands_total{verb="INCR"} 2`)
	assert.Contains(t, body, `cntd_commands_total{verb="DECR"} 1`)
	assert.Contains(t, body, `cntd_protocol_errors_total 1`)
	assert.Contains(t, body, `cntd_counters 2`)
	assert.Contains(t, body, `cntd_connections_active 1`)

	// request metrics are recorded after the response was written
	assert.Eventually(t, func() bool {
		_, body := httpGet(t, base+"/metrics")
		return strings.Contains(body, `cntd_http_requests_total{path="/health",status="200"} 1`) &&
			strings.Contains(body, `cntd_http_requests_total{path="other",status="404"} 1`)
	}, 2*time.Second, 20*time.Millisecond)
}
