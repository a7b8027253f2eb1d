package wifi

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	transport := &TransportError{Op: "GET /api/scan", Status: 502, Err: errors.New("bad gateway")}
	assert.ErrorIs(t, transport, ErrTransport)
	assert.NotErrorIs(t, transport, ErrApplication)
	assert.Equal(t, "GET /api/scan: status 502: bad gateway", transport.Error())

	app := &ApplicationError{Op: "connect", Message: "Invalid password"}
	wrapped := fmt.Errorf("joining: %w", app)
	assert.ErrorIs(t, wrapped, ErrApplication)
	assert.Equal(t, "Invalid password", app.Error())
	assert.Equal(t, "ping failed", (&ApplicationError{Op: "ping"}).Error())

	val := &ValidationError{Field: "ssid", Reason: "SSID is required"}
	assert.ErrorIs(t, val, ErrValidation)
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"backend message verbatim", &ApplicationError{Op: "connect", Message: "Invalid password"}, "Invalid password"},
		{"empty backend message", &ApplicationError{Op: "connect"}, "Connection failed"},
		{"transport", &TransportError{Op: "connect", Err: errors.New("refused")}, "Connection error"},
		{"validation", &ValidationError{Field: "ssid", Reason: "SSID is required"}, "SSID is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err, "Connection failed", "Connection error"))
		})
	}
}

func TestFormatPing(t *testing.T) {
	out := FormatPing(PingResult{
		Host:       "8.8.8.8",
		PacketLoss: "0%",
		MinTime:    "10.1 ms",
		AvgTime:    "11.2 ms",
		MaxTime:    "12.3 ms",
		Output:     "raw output",
	})
	assert.True(t, strings.HasPrefix(out, "Ping test to 8.8.8.8:\n\n"))
	assert.Contains(t, out, "Packet Loss: 0%\n")
	assert.Contains(t, out, "Avg: 11.2 ms\n")
	assert.True(t, strings.HasSuffix(out, "\nraw output"))

	bare := FormatPing(PingResult{Host: "example.com", Output: "raw"})
	assert.NotContains(t, bare, "Packet Loss")
	assert.NotContains(t, bare, "Min:")

	assert.Equal(t, "Ping test failed:\n\nunknown host", FormatPingFailure(PingResult{Output: "unknown host"}))
}

func TestFormatDiagnostics(t *testing.T) {
	out := FormatDiagnostics(Diagnostics{
		Interfaces: map[string]InterfaceStatus{
			"wlan1": {Status: "DOWN", Exists: true},
			"wlan0": {Status: "UP", Exists: true},
		},
		ConnectionStats: map[string]string{"state": "100 (connected)"},
		Gateway:         "192.168.1.1",
		DNSServers:      []string{"1.1.1.1", "8.8.8.8"},
	})
	assert.Less(t, strings.Index(out, "wlan0"), strings.Index(out, "wlan1"))
	assert.Contains(t, out, "  state: 100 (connected)\n")
	assert.Contains(t, out, "Gateway: 192.168.1.1\n")
	assert.Contains(t, out, "DNS Servers: 1.1.1.1, 8.8.8.8\n")
}
