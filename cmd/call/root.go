package call

import (
	"encoding/json"

	"github.com/ValentinKolb/qnclient/cmd/util"
	"github.com/ValentinKolb/qnclient/rpc/client"
	"github.com/spf13/cobra"
)

// CallCmd sends one raw command and prints its result
var CallCmd = &cobra.Command{
	Use:   "call [cmd] [key=value ...]",
	Short: "Send a single command to the notes server",
	Long: `Send a single command to the notes server and print the json result.

Arguments are given as key=value pairs. Values that are valid json are sent
decoded, e.g. count=3 sends a number and tags='["a"]' a list.

Example:
  qn call getNote noteHashID=abc`,
	Args:              cobra.MinimumNArgs(1),
	PersistentPreRunE: bindFlags,
	RunE:              run,
}

func init() {
	util.SetupRPCClientFlags(CallCmd)
}

func bindFlags(cmd *cobra.Command, _ []string) error {
	return util.BindCommandFlags(cmd)
}

func run(_ *cobra.Command, args []string) error {
	cmdArgs, err := util.ParseKeyValues(args[1:])
	if err != nil {
		return err
	}

	c, err := util.NewClient()
	if err != nil {
		return err
	}
	defer util.CloseClient(c)

	ctx, cancel := util.CommandContext()
	defer cancel()

	result, err := client.Call[json.RawMessage](ctx, c, args[0], cmdArgs)
	if err != nil {
		return err
	}
	if len(result) == 0 {
		return util.PrintJSON(nil)
	}
	return util.PrintJSON(result)
}
