package wifi

import (
	"context"
	"time"
)

const (
	// DefaultPingHost is probed when no host is given.
	DefaultPingHost = "8.8.8.8"
	// DefaultPingCount is the number of echo requests sent per ping test.
	DefaultPingCount = 4
)

// Network represents a single network, saved or visible.
type Network struct {
	SSID      string     `json:"ssid"`
	Signal    int        `json:"signal,omitempty"` // 0-100, 0 when unknown
	Security  string     `json:"security,omitempty"`
	IsSaved   bool       `json:"saved"`
	IsCurrent bool       `json:"current"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
}

// SignalLevel buckets a signal percentage for display.
type SignalLevel int

const (
	SignalUnknown SignalLevel = iota
	SignalWeak
	SignalMedium
	SignalStrong
)

// SignalLevel returns the display bucket of the network's signal.
func (n Network) SignalLevel() SignalLevel {
	switch {
	case n.Signal <= 0:
		return SignalUnknown
	case n.Signal >= 70:
		return SignalStrong
	case n.Signal >= 40:
		return SignalMedium
	default:
		return SignalWeak
	}
}

// IsOpen reports whether the network advertises no security.
func (n Network) IsOpen() bool {
	switch n.Security {
	case "", "--", "Open", "open", "none":
		return true
	}
	return false
}

// ConnectionState is the single active association, if any.
type ConnectionState struct {
	SSID string `json:"ssid,omitempty"`
	IP   string `json:"ip,omitempty"`
}

// Connected reports whether there is an active association.
func (c ConnectionState) Connected() bool {
	return c.SSID != ""
}

// PingResult holds the outcome of a ping test. Summary fields are empty when
// the backend could not parse them from the raw output.
type PingResult struct {
	Host       string `json:"host"`
	PacketLoss string `json:"packet_loss,omitempty"`
	MinTime    string `json:"min_time,omitempty"`
	AvgTime    string `json:"avg_time,omitempty"`
	MaxTime    string `json:"max_time,omitempty"`
	Output     string `json:"output"`
}

// InterfaceStatus is the link state of one network interface.
type InterfaceStatus struct {
	Status string `json:"status"`
	Exists bool   `json:"exists"`
}

// Diagnostics is a snapshot of the device's network configuration.
type Diagnostics struct {
	Interfaces      map[string]InterfaceStatus `json:"interfaces"`
	ConnectionStats map[string]string          `json:"connection_stats"`
	Gateway         string                     `json:"gateway"`
	DNSServers      []string                   `json:"dns_servers"`
}

// Status is the backend's condensed system status.
type Status struct {
	Connection ConnectionState `json:"connection"`
	SavedCount int             `json:"saved_count"`
}

// Backend defines the operations the wifi manager service exposes.
//
// Implementations return *TransportError when the exchange itself failed and
// *ApplicationError when the service answered but reported a failure.
type Backend interface {
	// Current returns the active connection. No association is not an error.
	Current(ctx context.Context) (ConnectionState, error)
	// Scan returns the most recent cached scan results.
	Scan(ctx context.Context) ([]Network, error)
	// Rescan triggers a fresh scan and returns its results.
	Rescan(ctx context.Context) ([]Network, error)
	// Saved returns the networks with stored credentials.
	Saved(ctx context.Context) ([]Network, error)
	// Connect associates with ssid. An empty password reuses stored credentials.
	Connect(ctx context.Context, ssid, password string) (string, error)
	// Forget removes the stored credentials for ssid.
	Forget(ctx context.Context, ssid string) (string, error)
	// Ping runs a ping test from the device. The result is populated on
	// application failures too, so callers can show the raw output.
	Ping(ctx context.Context, host string, count int) (PingResult, error)
	// Diagnostics returns interface, gateway and DNS information.
	Diagnostics(ctx context.Context) (Diagnostics, error)
	// Status returns the condensed system status.
	Status(ctx context.Context) (Status, error)
}
