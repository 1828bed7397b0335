package ping

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/qnclient/cmd/util"
	"github.com/ValentinKolb/qnclient/rpc/client"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// PingCmd measures the round trip time of the ping command
var PingCmd = &cobra.Command{
	Use:               "ping",
	Short:             "Measure the round trip time to the notes server",
	Long: `Send ping commands and print round trip statistics.

Only servers that answer ping can be measured. The notes server itself ignores
ping (the client uses it as a keepalive), so against it every ping times out
after --timeout.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: bindFlags,
	RunE:              run,
}

func init() {
	util.SetupRPCClientFlags(PingCmd)

	key := "count"
	PingCmd.Flags().Int(key, 5, util.WrapString("Number of pings to send"))

	key = "interval"
	PingCmd.Flags().Duration(key, 500*time.Millisecond, util.WrapString("Pause between two pings"))
}

func bindFlags(cmd *cobra.Command, _ []string) error {
	return util.BindCommandFlags(cmd)
}

func run(_ *cobra.Command, _ []string) error {
	count := viper.GetInt("count")
	interval := viper.GetDuration("interval")
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	c, err := util.NewClient()
	if err != nil {
		return err
	}
	defer util.CloseClient(c)

	timer := gometrics.NewTimer()
	defer timer.Stop()

	failed := 0
	for i := 0; i < count; i++ {
		if i > 0 {
			time.Sleep(interval)
		}

		ctx, cancel := util.CommandContext()
		start := time.Now()
		_, err := client.Call[any](ctx, c, client.PingCmd, nil)
		cancel()
		if err != nil {
			failed++
			fmt.Printf("ping %d: %v\n", i+1, err)
			continue
		}
		timer.UpdateSince(start)
		fmt.Printf("ping %d: %s\n", i+1, time.Since(start).Round(time.Microsecond))
	}

	snap := timer.Snapshot()
	if snap.Count() == 0 {
		return fmt.Errorf("all %d pings failed", count)
	}
	ps := snap.Percentiles([]float64{0.5, 0.95, 0.99})
	fmt.Printf("\n%d sent, %d failed\n", count, failed)
	fmt.Printf("min %s  mean %s  max %s\n",
		time.Duration(snap.Min()), time.Duration(snap.Mean()).Round(time.Microsecond), time.Duration(snap.Max()))
	fmt.Printf("p50 %s  p95 %s  p99 %s\n",
		time.Duration(ps[0]), time.Duration(ps[1]), time.Duration(ps[2]))
	return nil
}
