package notes

import (
	"github.com/ValentinKolb/qnclient/cmd/util"
	"github.com/ValentinKolb/qnclient/lib/notes"
	"github.com/ValentinKolb/qnclient/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcClient *client.Client
	api       *notes.API

	// NotesCommands represents the notes command group
	NotesCommands = &cobra.Command{
		Use:                "notes",
		Short:              "Read and change notes",
		PersistentPreRunE:  setupNotesClient,
		PersistentPostRunE: closeNotesClient,
	}
)

func init() {
	// Add common RPC flags to the notes command
	util.SetupRPCClientFlags(NotesCommands)

	// Add subcommands
	NotesCommands.AddCommand(listCmd)
	NotesCommands.AddCommand(recentCmd)
	NotesCommands.AddCommand(getCmd)
	NotesCommands.AddCommand(searchCmd)
	NotesCommands.AddCommand(userCmd)
	for _, op := range noteOps {
		NotesCommands.AddCommand(op)
	}
	NotesCommands.AddCommand(purgeCmd)
}

// setupNotesClient initializes the rpc client and the notes api
func setupNotesClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	c, err := util.NewClient()
	if err != nil {
		return err
	}
	rpcClient = c
	api = notes.New(c)
	return nil
}

func closeNotesClient(*cobra.Command, []string) error {
	util.CloseClient(rpcClient)
	return nil
}
