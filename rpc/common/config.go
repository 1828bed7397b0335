package common

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

// Default values used by DefaultClientConfig. The reconnect values produce the
// delay sequence 1s, 1.5s, 2.25s, ... until the delay would exceed 30s.
const (
	DefaultConnectTimeout   = 5 * time.Second
	DefaultPingInterval     = 30 * time.Second
	DefaultReconnectBase    = 1 * time.Second
	DefaultReconnectDecay   = 1.5
	DefaultReconnectMax     = 30 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultReadLimit        = 16 << 20 // 16 MB
)

// --------------------------------------------------------------------------
// Client configuration structs
// --------------------------------------------------------------------------

// ReconnectConfig holds the parameters of the reconnect policy.
// The delay before attempt n is BaseDelay * DecayFactor^n; once that exceeds
// MaxDelay the client stops retrying and waits for a manual reconnect.
type ReconnectConfig struct {
	BaseDelay   time.Duration
	DecayFactor float64
	MaxDelay    time.Duration
}

// TransportConfig holds the settings of the websocket transport
type TransportConfig struct {
	// HandshakeTimeout bounds the websocket opening handshake (0 = no limit)
	HandshakeTimeout time.Duration
	// WriteTimeout is the deadline applied to every frame write (0 = no deadline)
	WriteTimeout time.Duration
	// ReadLimit is the maximum size of an inbound frame in bytes (0 = unlimited)
	ReadLimit int64
	// Cookie is sent with the handshake, e.g. the session cookie of the notes site
	Cookie string

	// TCPNoDelay disables Nagle's algorithm on tcp:// endpoints
	TCPNoDelay bool
	// TCPKeepAlive is the keep-alive period on tcp:// endpoints (0 = os default)
	TCPKeepAlive time.Duration
}

// EndpointSchemes are the url schemes accepted by ClientConfig.Endpoint
var EndpointSchemes = []string{"ws", "wss", "tcp", "unix"}

// SplitEndpoint splits an endpoint url into its scheme and the remaining address
func SplitEndpoint(endpoint string) (scheme, address string, err error) {
	scheme, address, found := strings.Cut(endpoint, "://")
	if !found || address == "" {
		return "", "", fmt.Errorf("endpoint %q is not of the form scheme://address", endpoint)
	}
	for _, s := range EndpointSchemes {
		if s == scheme {
			return scheme, address, nil
		}
	}
	return "", "", fmt.Errorf("endpoint %q uses unsupported scheme %q (one of %s)",
		endpoint, scheme, strings.Join(EndpointSchemes, ", "))
}

// ClientConfig holds all configuration parameters of the notes client
type ClientConfig struct {
	// Endpoint is the url of the server (ws://, wss://, tcp:// or unix://)
	Endpoint string
	// ConnectTimeout is the only hard timeout of the client: a connection that is
	// not open after this duration is closed and goes through the reconnect policy
	ConnectTimeout time.Duration
	// PingInterval is the interval of the liveness probe while open (0 disables it)
	PingInterval time.Duration

	Reconnect ReconnectConfig
	Transport TransportConfig
}

// DefaultClientConfig returns a configuration with all defaults set for endpoint
func DefaultClientConfig(endpoint string) ClientConfig {
	return ClientConfig{
		Endpoint:       endpoint,
		ConnectTimeout: DefaultConnectTimeout,
		PingInterval:   DefaultPingInterval,
		Reconnect: ReconnectConfig{
			BaseDelay:   DefaultReconnectBase,
			DecayFactor: DefaultReconnectDecay,
			MaxDelay:    DefaultReconnectMax,
		},
		Transport: TransportConfig{
			HandshakeTimeout: DefaultHandshakeTimeout,
			WriteTimeout:     DefaultWriteTimeout,
			ReadLimit:        DefaultReadLimit,
			TCPNoDelay:       true,
		},
	}
}

// Validate checks the configuration and returns all problems at once
func (c *ClientConfig) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New("endpoint is required"))
	} else if _, _, err := SplitEndpoint(c.Endpoint); err != nil {
		errs = append(errs, err)
	}
	if c.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("connect timeout must be positive"))
	}
	if c.PingInterval < 0 {
		errs = append(errs, errors.New("ping interval must not be negative"))
	}
	if c.Reconnect.BaseDelay <= 0 {
		errs = append(errs, errors.New("reconnect base delay must be positive"))
	}
	if c.Reconnect.DecayFactor < 1 {
		errs = append(errs, fmt.Errorf("reconnect decay factor %v must be >= 1", c.Reconnect.DecayFactor))
	}
	if c.Reconnect.MaxDelay <= 0 {
		errs = append(errs, errors.New("reconnect max delay must be positive"))
	}
	return errors.Join(errs...)
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Endpoint", c.Endpoint)
	addField("Connect Timeout", c.ConnectTimeout.String())
	if c.PingInterval > 0 {
		addField("Ping Interval", c.PingInterval.String())
	} else {
		addField("Ping Interval", "disabled")
	}

	// Reconnect policy
	addSection("Reconnect Policy")
	addField("Base Delay", c.Reconnect.BaseDelay.String())
	addField("Decay Factor", fmt.Sprintf("%g", c.Reconnect.DecayFactor))
	addField("Max Delay", c.Reconnect.MaxDelay.String())

	// Transport
	addSection("Transport")
	addField("Handshake Timeout", c.Transport.HandshakeTimeout.String())
	addField("Write Timeout", c.Transport.WriteTimeout.String())
	addField("Read Limit", fmt.Sprintf("%d KB", c.Transport.ReadLimit/1024))
	if c.Transport.Cookie != "" {
		addField("Cookie", "set")
	}
	addField("TCP No Delay", fmt.Sprintf("%t", c.Transport.TCPNoDelay))
	if c.Transport.TCPKeepAlive > 0 {
		addField("TCP Keep Alive", c.Transport.TCPKeepAlive.String())
	}

	return sb.String()
}
