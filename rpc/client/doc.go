// Package client implements a client for the cntd line protocol. It is used by
// the counter subcommands of the command line tool and by the perf benchmark.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  TransportType: "tcp",
//	  TimeoutSecond: 5,
//	  Transport: common.ClientTransportConfig{
//	    Endpoints:  []string{"localhost:6379"},
//	    RetryCount: 3,
//	  },
//	}
//
//	c, err := client.NewRPCCounterClient(config, tcp.NewTCPClientTransport())
//	if err != nil {
//	  log.Fatalf("Failed to connect: %v", err)
//	}
//	defer c.Close()
//
//	v, err := c.Increment("req.page.1")
//
// Thread Safety:
//
//	A client may be shared by several goroutines, requests are sent one after
//	another over its single connection. Create one client per goroutine for
//	parallel requests.
package client
