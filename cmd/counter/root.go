package counter

import (
	"github.com/ValentinKolb/cntd/cmd/util"
	"github.com/ValentinKolb/cntd/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcClient client.ICounterClient

	// CounterCommands represents the counter command group
	CounterCommands = &cobra.Command{
		Use:                "counter",
		Short:              "Perform counter operations against a cntd server",
		PersistentPreRunE:  setupCounterClient,
		PersistentPostRunE: closeCounterClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common RPC flags to the counter command
	util.SetupRPCClientFlags(CounterCommands)

	// Add subcommands
	CounterCommands.AddCommand(incrCmd)
	CounterCommands.AddCommand(decrCmd)
	CounterCommands.AddCommand(snapshotCmd)
	CounterCommands.AddCommand(perfTestCmd)
}

// setupCounterClient initializes the RPC counter client
func setupCounterClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	t, err := util.GetClientTransport()
	if err != nil {
		return err
	}

	rpcClient, err = client.NewRPCCounterClient(*util.GetClientConfig(), t)
	return err
}

func closeCounterClient(_ *cobra.Command, _ []string) error {
	if rpcClient == nil {
		return nil
	}
	return rpcClient.Close()
}
