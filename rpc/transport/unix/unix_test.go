package unix

import (
	"context"
	"github.com/ValentinKolb/cntd/rpc/common"
	"github.com/ValentinKolb/cntd/rpc/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestUnixRoundTrip(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "cntd.sock")

	// a stale file is replaced
	require.NoError(t, os.WriteFile(socketPath, []byte("stale"), 0o600))

	srv := NewUnixServerTransport()
	srv.RegisterHandler(func(cmd protocol.Command, perr *protocol.Error) protocol.Reply {
		return protocol.NewValueReply(int64(len(cmd.Key)))
	})
	require.NoError(t, srv.Listen(common.ServerConfig{
		Transport: common.ServerTransportConfig{
			Endpoint:   socketPath,
			SocketConf: common.SocketConf{WriteBufferSize: 16 * 1024},
		},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	conn, err := NewUnixClientTransport().Dial(context.Background(), common.ClientConfig{
		Transport: common.ClientTransportConfig{Endpoints: []string{socketPath}},
	})
	require.NoError(t, err)

	_, err = conn.Write([]byte("INCR four\n"))
	require.NoError(t, err)
	v, err := protocol.NewReplyReader(conn).ReadValue()
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)

	require.NoError(t, conn.Close())
	cancel()
	require.NoError(t, <-done)

	_, err = os.Stat(socketPath)
	assert.True(t, os.IsNotExist(err))
}
