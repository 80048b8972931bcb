package cmd

import (
	"fmt"
	"github.com/ValentinKolb/cntd/cmd/counter"
	"github.com/ValentinKolb/cntd/cmd/serve"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.1.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "cntd",
		Short: "concurrent counter aggregation store",
		Long: fmt.Sprintf(`cntd (v%s)

An in-memory store of named 64-bit counters written in Go. Many clients
increment and decrement counters concurrently over a line-oriented TCP
protocol (INCR, DECR, SNAPSHOT) without losing a single update.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of cntd",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cntd v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(counter.CounterCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
