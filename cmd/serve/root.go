package serve

import (
	"fmt"
	cmdUtil "github.com/ValentinKolb/cntd/cmd/util"
	"github.com/ValentinKolb/cntd/lib/counter/engines"
	"github.com/ValentinKolb/cntd/lib/counter/engines/sharded"
	"github.com/ValentinKolb/cntd/rpc/common"
	"github.com/ValentinKolb/cntd/rpc/protocol"
	"github.com/ValentinKolb/cntd/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the cntd server",
		Long:    `Start the cntd server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is CNTD_<flag> (e.g. CNTD_ENGINE=cmap)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "engine"
	ServeCmd.PersistentFlags().String(key, sharded.EngineName, cmdUtil.WrapString(fmt.Sprintf("The counter store engine (%s). mutex uses one global lock and gives atomic snapshots, sharded and cmap let writers of different keys proceed in parallel", strings.Join(engines.Names, ", "))))

	key = "shards"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Number of shards of the sharded engine (0 = 4 x number of CPUs)"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:6379", cmdUtil.WrapString("The address on which the line protocol will listen (e.g. 0.0.0.0:6379, /tmp/cntd.sock)"))

	key = "max-line-bytes"
	ServeCmd.PersistentFlags().Int(key, protocol.DefaultMaxLineBytes, cmdUtil.WrapString("Longest accepted command line in bytes, longer lines are answered with an error"))

	key = "debug-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Address of the debug HTTP endpoint serving /metrics, /snapshot, /info and /health (empty = disabled)"))

	key = "report-interval"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Print all counters to stdout every n seconds (0 = disabled)"))

	key = "task-workers"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Number of built-in workers incrementing call.thread.worker.<n> (0 = disabled)"))

	key = "request-workers"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Number of built-in workers incrementing req.page.<n> (0 = disabled)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	cmdUtil.SetupTransportFlags(ServeCmd)
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	socketConf, tcpConf := cmdUtil.GetSocketConf()

	serveCmdConfig.Engine = viper.GetString("engine")
	serveCmdConfig.NumShards = viper.GetInt("shards")
	serveCmdConfig.TransportType = viper.GetString("transport")
	serveCmdConfig.Transport = common.ServerTransportConfig{
		Endpoint:     viper.GetString("endpoint"),
		MaxLineBytes: viper.GetInt("max-line-bytes"),
		SocketConf:   socketConf,
		TCPConf:      tcpConf,
	}
	serveCmdConfig.DebugEndpoint = viper.GetString("debug-endpoint")
	serveCmdConfig.ReportIntervalSecond = viper.GetInt("report-interval")
	serveCmdConfig.Producers = common.ProducerConfig{
		TaskWorkers:    viper.GetInt("task-workers"),
		RequestWorkers: viper.GetInt("request-workers"),
	}
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	// validate
	if err := common.ValidateLogLevel(serveCmdConfig.LogLevel); err != nil {
		return err
	}
	if serveCmdConfig.NumShards < 0 {
		return fmt.Errorf("invalid shard count %d", serveCmdConfig.NumShards)
	}
	if serveCmdConfig.Transport.MaxLineBytes <= 0 {
		return fmt.Errorf("invalid max line bytes %d", serveCmdConfig.Transport.MaxLineBytes)
	}
	if serveCmdConfig.Transport.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}

	return nil
}

// run starts the cntd server
func run(cmd *cobra.Command, _ []string) error {
	common.InitLoggers(serveCmdConfig.LogLevel)
	server.Logger.Infof("Starting cntd server\n%s", serveCmdConfig.String())

	t, err := cmdUtil.GetServerTransport()
	if err != nil {
		return err
	}

	serv, err := server.NewRPCServer(*serveCmdConfig, t)
	if err != nil {
		return err
	}

	// errors from here on are runtime errors, not usage errors
	cmd.SilenceUsage = true
	return serv.Serve()
}
