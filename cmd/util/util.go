package util

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ValentinKolb/qnclient/rpc/client"
	"github.com/ValentinKolb/qnclient/rpc/common"
	"github.com/ValentinKolb/qnclient/rpc/serializer"
	"github.com/ValentinKolb/qnclient/rpc/transport"
	"github.com/ValentinKolb/qnclient/rpc/transport/tcp"
	"github.com/ValentinKolb/qnclient/rpc/transport/unix"
	"github.com/ValentinKolb/qnclient/rpc/transport/ws"
	"github.com/VictoriaMetrics/metrics"
	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Logger = logger.GetLogger("cmd")

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupRPCClientFlags adds the connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	key := "endpoint"
	cmd.PersistentFlags().String(key, "ws://localhost:5020/api/ws", WrapString("The url of the notes server. Supported schemes: ws, wss, tcp, unix"))

	key = "timeout"
	cmd.PersistentFlags().Duration(key, 10*time.Second, WrapString("How long a command waits for its result"))

	key = "connect-timeout"
	cmd.PersistentFlags().Duration(key, common.DefaultConnectTimeout, WrapString("Close a connection attempt that is not open after this duration"))

	key = "ping-interval"
	cmd.PersistentFlags().Duration(key, common.DefaultPingInterval, WrapString("Interval of the liveness ping while connected (0 disables it)"))

	key = "reconnect-base"
	cmd.PersistentFlags().Duration(key, common.DefaultReconnectBase, WrapString("Delay before the first automatic reconnect"))

	key = "reconnect-decay"
	cmd.PersistentFlags().Float64(key, common.DefaultReconnectDecay, WrapString("Factor the reconnect delay grows by with every attempt"))

	key = "reconnect-max"
	cmd.PersistentFlags().Duration(key, common.DefaultReconnectMax, WrapString("Stop reconnecting automatically once the delay would exceed this"))

	key = "cookie"
	cmd.PersistentFlags().String(key, "", WrapString("Cookie header sent with the websocket handshake (e.g. the session cookie)"))

	key = "transport-handshake-timeout"
	cmd.PersistentFlags().Duration(key, common.DefaultHandshakeTimeout, WrapString("Timeout of the websocket opening handshake"))

	key = "transport-write-timeout"
	cmd.PersistentFlags().Duration(key, common.DefaultWriteTimeout, WrapString("Deadline for writing a single message"))

	key = "transport-read-limit"
	cmd.PersistentFlags().Int64(key, common.DefaultReadLimit/1024, WrapString("Maximum size of an incoming message (in KB)"))

	key = "transport-tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY (only for tcp endpoints)"))

	key = "transport-tcp-keepalive"
	cmd.PersistentFlags().Duration(key, 0, WrapString("The keepalive interval (only for tcp endpoints, 0 = os default)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("qn")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() (*common.ClientConfig, error) {
	conf := &common.ClientConfig{
		Endpoint:       viper.GetString("endpoint"),
		ConnectTimeout: viper.GetDuration("connect-timeout"),
		PingInterval:   viper.GetDuration("ping-interval"),
		Reconnect: common.ReconnectConfig{
			BaseDelay:   viper.GetDuration("reconnect-base"),
			DecayFactor: viper.GetFloat64("reconnect-decay"),
			MaxDelay:    viper.GetDuration("reconnect-max"),
		},
		Transport: common.TransportConfig{
			HandshakeTimeout: viper.GetDuration("transport-handshake-timeout"),
			WriteTimeout:     viper.GetDuration("transport-write-timeout"),
			ReadLimit:        viper.GetInt64("transport-read-limit") * 1024,
			Cookie:           viper.GetString("cookie"),
			TCPNoDelay:       viper.GetBool("transport-tcp-nodelay"),
			TCPKeepAlive:     viper.GetDuration("transport-tcp-keepalive"),
		},
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// GetSerializer creates a serializer based on configuration
func GetSerializer() (serializer.IRPCSerializer, error) {
	return serializer.ByName(viper.GetString("serializer"))
}

// GetTransport creates the transport matching the scheme of the configured endpoint
func GetTransport(conf *common.ClientConfig) (transport.IClientTransport, error) {
	scheme, _, err := common.SplitEndpoint(conf.Endpoint)
	if err != nil {
		return nil, err
	}
	switch scheme {
	case "ws", "wss":
		return ws.NewWebsocketTransport(conf.Transport), nil
	case "tcp":
		return tcp.NewTCPClientTransport(conf.Transport), nil
	case "unix":
		return unix.NewUnixClientTransport(conf.Transport), nil
	default:
		return nil, fmt.Errorf("invalid transport scheme %s", scheme)
	}
}

// NewClient creates and opens a client from the configuration
func NewClient() (*client.Client, error) {
	conf, err := GetClientConfig()
	if err != nil {
		return nil, err
	}
	s, err := GetSerializer()
	if err != nil {
		return nil, err
	}
	t, err := GetTransport(conf)
	if err != nil {
		return nil, err
	}

	c, err := client.New(*conf, t, s)
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Client configuration:%s", conf.String())
	c.Open()
	return c, nil
}

// CommandContext returns the context bounding a single command by the timeout flag
func CommandContext() (context.Context, context.CancelFunc) {
	timeout := viper.GetDuration("timeout")
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

// CloseClient closes c and, if the metrics flag is set, dumps all metrics to stderr
func CloseClient(c *client.Client) {
	if c == nil {
		return
	}
	if viper.GetBool("metrics") {
		WriteMetrics(os.Stderr, c)
	}
	if err := c.Close(); err != nil {
		Logger.Warningf("Failed to close client: %v", err)
	}
}

// WriteMetrics writes the client metrics and the process metrics in Prometheus text format
func WriteMetrics(w io.Writer, c *client.Client) {
	c.WriteMetrics(w)
	metrics.WritePrometheus(w, true)
}

// PrintJSON prints v indented to stdout
func PrintJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	return viper.BindPFlags(cmd.InheritedFlags())
}

// ParseKeyValues turns key=value arguments into command args. Values that are valid
// json (numbers, booleans, objects, quoted strings) are decoded, anything else is kept as string.
func ParseKeyValues(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q is not of the form key=value", pair)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			args[key] = decoded
		} else {
			args[key] = value
		}
	}
	return args, nil
}
