package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/qnclient/cmd/call"
	"github.com/ValentinKolb/qnclient/cmd/notes"
	"github.com/ValentinKolb/qnclient/cmd/ping"
	"github.com/ValentinKolb/qnclient/cmd/util"
	"github.com/ValentinKolb/qnclient/cmd/watch"
	"github.com/ValentinKolb/qnclient/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "qn",
		Short: "client for the notes server",
		Long: fmt.Sprintf(`qn (v%s)

A command line client for the notes server. All commands share one persistent
connection that multiplexes requests and reconnects automatically.`, Version),
		SilenceUsage:      true,
		PersistentPreRunE: setupRoot,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of qn",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("qn v%s\n", Version)
		},
	}
)

func init() {
	// run the root hooks before the hooks of the subcommands
	cobra.EnableTraverseRunHooks = true
	cobra.OnInitialize(util.InitClientConfig)

	// Add Commands
	RootCmd.AddCommand(call.CallCmd)
	RootCmd.AddCommand(notes.NotesCommands)
	RootCmd.AddCommand(watch.WatchCmd)
	RootCmd.AddCommand(ping.PingCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, proto)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "warning", util.WrapString("log level (debug, info, warning, error)"))
	key = "metrics"
	RootCmd.PersistentFlags().Bool(key, false, util.WrapString("print the client metrics to stderr when the command ends"))
}

func setupRoot(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	return common.InitLoggers(viper.GetString("log-level"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
