package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Transport configuration
// --------------------------------------------------------------------------

// SocketConf holds settings that apply to every stream socket
type SocketConf struct {
	WriteBufferSize int // OS socket write buffer in bytes (0 = OS default)
	ReadBufferSize  int // OS socket read buffer in bytes (0 = OS default)
}

// TCPConf holds settings that only apply to TCP connections
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int // 0 = keep-alive disabled
	TCPLingerSec    int // < 0 = OS default
}

// ServerTransportConfig configures the listener of the server
type ServerTransportConfig struct {
	// Endpoint is a host:port for tcp or a socket path for unix
	Endpoint string
	// MaxLineBytes is the upper bound of a single command line (0 = protocol default)
	MaxLineBytes int
	SocketConf
	TCPConf
}

// ClientTransportConfig configures how the client dials the server
type ClientTransportConfig struct {
	Endpoints  []string
	RetryCount int
	SocketConf
	TCPConf
}

// --------------------------------------------------------------------------
// Server configuration struct
// --------------------------------------------------------------------------

// ProducerConfig enables the built-in workload generators
type ProducerConfig struct {
	TaskWorkers    int
	RequestWorkers int
}

// ServerConfig holds all configuration parameters of a cntd server.
type ServerConfig struct {
	// Counter store engine (mutex, sharded, cmap)
	Engine string
	// Number of shards for the sharded engine (<= 0 = engine default)
	NumShards int

	// Line protocol listener
	TransportType string
	Transport     ServerTransportConfig

	// Debug HTTP api settings (empty = disabled)
	DebugEndpoint string

	// Periodic snapshot dump to stdout in seconds (0 = disabled)
	ReportIntervalSecond int

	// Built-in producers
	Producers ProducerConfig

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Store
	addSection("Counter Store")
	addField("Engine", c.Engine)
	if c.NumShards > 0 {
		addField("Shards", strconv.Itoa(c.NumShards))
	} else {
		addField("Shards", "default")
	}

	// Transport
	addSection("Line Protocol Server")
	addField("Transport", c.TransportType)
	addField("Endpoint", c.Transport.Endpoint)
	addField("Max Line Bytes", strconv.Itoa(c.Transport.MaxLineBytes))
	addField("Write Buffer", byteSize(c.Transport.WriteBufferSize))
	addField("Read Buffer", byteSize(c.Transport.ReadBufferSize))
	if c.TransportType == "tcp" {
		addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
		addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
		addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))
	}

	// Extras
	addSection("Extras")
	addField("Debug Endpoint", orDisabled(c.DebugEndpoint))
	if c.ReportIntervalSecond > 0 {
		addField("Report Interval", fmt.Sprintf("%d sec", c.ReportIntervalSecond))
	} else {
		addField("Report Interval", "disabled")
	}
	addField("Task Workers", strconv.Itoa(c.Producers.TaskWorkers))
	addField("Request Workers", strconv.Itoa(c.Producers.RequestWorkers))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	TransportType string
	Transport     ClientTransportConfig
	TimeoutSecond int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Transport", c.TransportType)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func byteSize(n int) string {
	if n <= 0 {
		return "os default"
	}
	return fmt.Sprintf("%d bytes", n)
}

func orDisabled(s string) string {
	if s == "" {
		return "disabled"
	}
	return s
}
