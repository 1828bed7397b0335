package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ValentinKolb/qnclient/cmd/util"
	"github.com/ValentinKolb/qnclient/lib/notes"
	"github.com/ValentinKolb/qnclient/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// WatchCmd keeps a connection open and prints status changes and note pushes
var WatchCmd = &cobra.Command{
	Use:   "watch [userIDHash]",
	Short: "Keep a connection open and print status changes and pushed notes",
	Long: `Keep a connection to the notes server open until interrupted.

Every connectivity status change is printed, as is every broadcastUserNotes push.
If a user is given, the notes of that user are loaded once the connection is open.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: bindFlags,
	RunE:              run,
}

func init() {
	util.SetupRPCClientFlags(WatchCmd)

	key := "keep-trying"
	WatchCmd.Flags().Bool(key, false, util.WrapString("Reconnect manually whenever the automatic reconnects gave up"))
}

func bindFlags(cmd *cobra.Command, _ []string) error {
	return util.BindCommandFlags(cmd)
}

func run(_ *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := util.NewClient()
	if err != nil {
		return err
	}
	defer util.CloseClient(c)

	keepTrying := viper.GetBool("keep-trying")
	unsubscribe := c.OnStatus(func(s client.Status) {
		fmt.Printf("%s  %-12s %s\n", time.Now().Format(time.TimeOnly), s.Kind, s.Text)
		if keepTrying && s.Kind == client.StatusDisconnected {
			c.Reconnect()
		}
	})
	defer unsubscribe()

	api := notes.New(c)
	unregister := api.OnUserNotes(func(n *notes.UserNotes) {
		fmt.Printf("%s  push         %d notes\n", time.Now().Format(time.TimeOnly), len(n.Notes))
	})
	defer unregister()

	if len(args) == 1 {
		res, err := api.GetNotes(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s  loaded       %d notes of %s\n", time.Now().Format(time.TimeOnly), len(res.Notes), args[0])
	}

	<-ctx.Done()
	return nil
}
