package counter

import (
	"fmt"
	"github.com/spf13/cobra"
)

var (
	incrCmd = &cobra.Command{
		Use:   "incr [key]",
		Short: "Increments a counter and prints the new value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := rpcClient.Increment(args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	}
	decrCmd = &cobra.Command{
		Use:   "decr [key]",
		Short: "Decrements a counter and prints the new value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := rpcClient.Decrement(args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	}
	snapshotCmd = &cobra.Command{
		Use:   "snapshot",
		Short: "Prints all counters as key: value lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := rpcClient.Snapshot()
			if err != nil {
				return err
			}
			fmt.Print(snap.String())
			return nil
		},
	}
)
