package base

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/cntd/rpc/common"
	"github.com/ValentinKolb/cntd/rpc/transport"
	"math/rand"
	"net"
	"sync/atomic"
	"time"
)

// Initial backoff between two dial attempts
const initialDialBackoff = 50 * time.Millisecond

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to endpoint
	Connect(ctx context.Context, endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientTransport dials endpoints independent of the specific transport medium
type clientTransport struct {
	connector    IClientConnector
	nextEndpoint atomic.Uint64 // Round robin over the configured endpoints
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{connector: connector}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Dial(ctx context.Context, config common.ClientConfig) (net.Conn, error) {
	endpoints := config.Transport.Endpoints
	if len(endpoints) == 0 {
		return nil, errors.New("no endpoints provided")
	}

	// We always try at least once
	attempts := max(config.Transport.RetryCount, 1)
	backoff := initialDialBackoff

	var lastErr error
	for i := 0; i < attempts; i++ {
		endpoint := endpoints[(t.nextEndpoint.Add(1)-1)%uint64(len(endpoints))]

		conn, err := t.dialOnce(ctx, endpoint, config)
		if err == nil {
			Logger.Debugf("Connected to %s using %s transport", endpoint, t.connector.GetName())
			return conn, nil
		}
		lastErr = err
		Logger.Debugf("Connection attempt %d/%d failed: %v", i+1, attempts, err)

		if i < attempts-1 {
			// Exponential backoff with a small random jitter (+-10%)
			jitter := time.Duration(float64(backoff) * (0.9 + 0.2*rand.Float64()))
			select {
			case <-time.After(jitter):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", attempts, lastErr)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (t *clientTransport) dialOnce(ctx context.Context, endpoint string, config common.ClientConfig) (net.Conn, error) {
	if config.TimeoutSecond > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(config.TimeoutSecond)*time.Second)
		defer cancel()
	}

	conn, err := t.connector.Connect(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}

	if err := t.connector.UpgradeConnection(conn, config); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to upgrade connection to %s: %w", endpoint, err)
	}
	return conn, nil
}
