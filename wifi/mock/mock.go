package mock

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jlbmaritime/hotspotctl/wifi"
)

var DefaultActionSleep = 500 * time.Millisecond

// Backend is an in-memory implementation of wifi.Backend. It follows the
// wifi manager service's rules: saved networks reconnect without a
// passphrase, secured networks check Secrets, and the active network cannot
// be forgotten.
type Backend struct {
	mu sync.Mutex

	Visible       []wifi.Network
	SavedNetworks []wifi.Network
	Secrets       map[string]string
	CurrentSSID   string
	IP            string

	CurrentError     error
	ScanError        error
	SavedError       error
	ConnectError     error
	ForgetError      error
	PingError        error
	DiagnosticsError error

	// ActionSleep is a delay before every action, to better emulate a real-world backend for the frontend. Set to 0 during testing.
	ActionSleep time.Duration

	calls []string
}

func ago(duration time.Duration) *time.Time {
	t := time.Now().Add(-duration).Truncate(time.Second)
	return &t
}

// New creates a mock backend with a list of fun wifi networks.
func New() *Backend {
	return &Backend{
		Visible: []wifi.Network{
			{SSID: "TacoBoutAGoodSignal", Signal: 99, Security: "WPA2"},
			{SSID: "Password is password", Signal: 87, Security: "WPA2"},
			{SSID: "HideYoKidsHideYoWiFi", Signal: 71, Security: "WPA2"},
			{SSID: "Police Surveillance 2", Signal: 48, Security: "WPA2"},
			{SSID: "Dunder MiffLAN", Signal: 42, Security: "WPA1 WPA2"},
			{SSID: "NeverGonnaGiveYouIP", Signal: 35, Security: "WEP"},
			{SSID: "Unencrypted_Honeypot", Signal: 22, Security: "--"},
		},
		SavedNetworks: []wifi.Network{
			{SSID: "HideYoKidsHideYoWiFi", LastUsed: ago(2 * time.Hour)},
			{SSID: "Password is password", LastUsed: ago(12456 * time.Hour)},
			{SSID: "GET off my LAN", LastUsed: ago(761 * time.Hour)},
		},
		Secrets: map[string]string{
			"TacoBoutAGoodSignal":   "tacos",
			"Police Surveillance 2": "donuts",
			"Dunder MiffLAN":        "assistant to the regional manager",
			"NeverGonnaGiveYouIP":   "rickroll",
		},
		CurrentSSID: "HideYoKidsHideYoWiFi",
		IP:          "192.168.1.42",
		ActionSleep: DefaultActionSleep,
	}
}

// Calls returns the operations issued so far, e.g. "connect:Cafe".
func (m *Backend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *Backend) record(ctx context.Context, call string) error {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	sleep := m.ActionSleep
	m.mu.Unlock()

	if sleep == 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(sleep):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Backend) savedIndex(ssid string) int {
	for i, n := range m.SavedNetworks {
		if n.SSID == ssid {
			return i
		}
	}
	return -1
}

func (m *Backend) visible(ssid string) (wifi.Network, bool) {
	for _, n := range m.Visible {
		if n.SSID == ssid {
			return n, true
		}
	}
	return wifi.Network{}, false
}

func (m *Backend) Current(ctx context.Context) (wifi.ConnectionState, error) {
	if err := m.record(ctx, "current"); err != nil {
		return wifi.ConnectionState{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CurrentError != nil {
		return wifi.ConnectionState{}, m.CurrentError
	}
	if m.CurrentSSID == "" {
		return wifi.ConnectionState{}, nil
	}
	return wifi.ConnectionState{SSID: m.CurrentSSID, IP: m.IP}, nil
}

func (m *Backend) Scan(ctx context.Context) ([]wifi.Network, error) {
	if err := m.record(ctx, "scan"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ScanError != nil {
		return nil, m.ScanError
	}
	return append([]wifi.Network(nil), m.Visible...), nil
}

func (m *Backend) Rescan(ctx context.Context) ([]wifi.Network, error) {
	if err := m.record(ctx, "rescan"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ScanError != nil {
		return nil, m.ScanError
	}
	// Only jitter when emulating a real device, so tests stay deterministic.
	if m.ActionSleep > 0 {
		r := rand.New(rand.NewSource(time.Now().UnixNano()))
		for i := range m.Visible {
			m.Visible[i].Signal = r.Intn(70) + 30
		}
		wifi.SortNetworks(m.Visible)
	}
	return append([]wifi.Network(nil), m.Visible...), nil
}

func (m *Backend) Saved(ctx context.Context) ([]wifi.Network, error) {
	if err := m.record(ctx, "saved"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SavedError != nil {
		return nil, m.SavedError
	}
	return append([]wifi.Network(nil), m.SavedNetworks...), nil
}

func (m *Backend) Connect(ctx context.Context, ssid, password string) (string, error) {
	if err := m.record(ctx, "connect:"+ssid); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ConnectError != nil {
		return "", m.ConnectError
	}
	if ssid == "" {
		return "", &wifi.ApplicationError{Op: "connect", Message: "SSID is required"}
	}

	if i := m.savedIndex(ssid); i >= 0 && password == "" {
		m.activate(i)
		return "Connected successfully", nil
	}

	n, ok := m.visible(ssid)
	if !ok {
		return "", &wifi.ApplicationError{Op: "connect", Message: fmt.Sprintf("No network with SSID '%s' found.", ssid)}
	}
	if secret, ok := m.Secrets[ssid]; ok && !n.IsOpen() && secret != password {
		return "", &wifi.ApplicationError{Op: "connect", Message: "Invalid password"}
	}

	i := m.savedIndex(ssid)
	if i < 0 {
		m.SavedNetworks = append(m.SavedNetworks, wifi.Network{SSID: ssid})
		i = len(m.SavedNetworks) - 1
	}
	m.activate(i)
	return "Connected successfully", nil
}

func (m *Backend) activate(i int) {
	now := time.Now().Truncate(time.Second)
	m.SavedNetworks[i].LastUsed = &now
	m.CurrentSSID = m.SavedNetworks[i].SSID
	if m.IP == "" {
		m.IP = "192.168.1.42"
	}
}

func (m *Backend) Forget(ctx context.Context, ssid string) (string, error) {
	if err := m.record(ctx, "forget:"+ssid); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ForgetError != nil {
		return "", m.ForgetError
	}
	if ssid == m.CurrentSSID {
		return "", &wifi.ApplicationError{Op: "forget", Message: "Cannot forget currently active network"}
	}
	if i := m.savedIndex(ssid); i >= 0 {
		m.SavedNetworks = append(m.SavedNetworks[:i], m.SavedNetworks[i+1:]...)
	}
	return "Network forgotten", nil
}

func (m *Backend) Ping(ctx context.Context, host string, count int) (wifi.PingResult, error) {
	if err := m.record(ctx, "ping:"+host); err != nil {
		return wifi.PingResult{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PingError != nil {
		return wifi.PingResult{Host: host, Output: m.PingError.Error()}, m.PingError
	}

	var out string
	for i := 1; i <= count; i++ {
		out += fmt.Sprintf("64 bytes from %s: icmp_seq=%d ttl=117 time=1%d.%d ms\n", host, i, i, i)
	}
	out += fmt.Sprintf("\n--- %s ping statistics ---\n%d packets transmitted, %d received, 0%% packet loss, time %dms\n", host, count, count, count*1000)
	out += "rtt min/avg/max/mdev = 11.100/12.500/14.400/1.200 ms"

	return wifi.PingResult{
		Host:       host,
		PacketLoss: "0%",
		MinTime:    "11.100 ms",
		AvgTime:    "12.500 ms",
		MaxTime:    "14.400 ms",
		Output:     out,
	}, nil
}

func (m *Backend) Diagnostics(ctx context.Context) (wifi.Diagnostics, error) {
	if err := m.record(ctx, "diagnostics"); err != nil {
		return wifi.Diagnostics{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DiagnosticsError != nil {
		return wifi.Diagnostics{}, m.DiagnosticsError
	}
	d := wifi.Diagnostics{
		Interfaces: map[string]wifi.InterfaceStatus{
			"wlan0": {Status: "UP", Exists: true},
			"wlan1": {Status: "UP", Exists: true},
		},
		ConnectionStats: map[string]string{},
		Gateway:         "192.168.1.1",
		DNSServers:      []string{"192.168.1.1"},
	}
	if m.CurrentSSID != "" {
		d.ConnectionStats["state"] = "100 (connected)"
		d.ConnectionStats["connection"] = m.CurrentSSID
		d.ConnectionStats["ip_address"] = m.IP + "/24"
		d.ConnectionStats["signal_strength"] = "-48 dBm"
	} else {
		d.Interfaces["wlan0"] = wifi.InterfaceStatus{Status: "DOWN", Exists: true}
		d.Gateway = "Unknown"
		d.DNSServers = []string{"None configured"}
	}
	return d, nil
}

func (m *Backend) Status(ctx context.Context) (wifi.Status, error) {
	if err := m.record(ctx, "status"); err != nil {
		return wifi.Status{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CurrentError != nil {
		return wifi.Status{}, m.CurrentError
	}
	s := wifi.Status{SavedCount: len(m.SavedNetworks)}
	if m.CurrentSSID != "" {
		s.Connection = wifi.ConnectionState{SSID: m.CurrentSSID, IP: m.IP}
	}
	return s, nil
}
