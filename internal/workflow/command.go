package workflow

import (
	"strings"

	"github.com/jlbmaritime/hotspotctl/internal/reconcile"
	"github.com/jlbmaritime/hotspotctl/wifi"
)

// Command is a named user action accepted by Controller.Dispatch.
type Command interface {
	slot() string
	kind() Kind
	target() string
	// validate checks preconditions against the latest snapshot. It never
	// issues a request.
	validate(s reconcile.State) error
}

// ConnectSaved reconnects to a saved network using its stored credentials.
type ConnectSaved struct {
	SSID string
}

// Join connects to a network with a passphrase from the password dialog.
type Join struct {
	SSID     string
	Password string
}

// Forget removes a saved network.
type Forget struct {
	SSID string
}

// Ping runs a ping test from the device. A blank Host probes
// wifi.DefaultPingHost.
type Ping struct {
	Host string
}

// Rescan triggers a fresh scan.
type Rescan struct{}

// Diagnose fetches the device's network diagnostics.
type Diagnose struct{}

func requireSSID(ssid string) error {
	if strings.TrimSpace(ssid) == "" {
		return &wifi.ValidationError{Field: "ssid", Reason: "SSID is required"}
	}
	return nil
}

func (c ConnectSaved) slot() string   { return ConnectSlot(c.SSID) }
func (c ConnectSaved) kind() Kind     { return KindConnect }
func (c ConnectSaved) target() string { return c.SSID }
func (c ConnectSaved) validate(s reconcile.State) error {
	if err := requireSSID(c.SSID); err != nil {
		return err
	}
	if !s.IsSaved(c.SSID) {
		return wifi.ErrNotSaved
	}
	if s.IsCurrent(c.SSID) {
		return wifi.ErrAlreadyConnected
	}
	return nil
}

func (c Join) slot() string   { return SlotModal }
func (c Join) kind() Kind     { return KindConnect }
func (c Join) target() string { return c.SSID }
func (c Join) validate(reconcile.State) error {
	return requireSSID(c.SSID)
}

func (c Forget) slot() string   { return ForgetSlot(c.SSID) }
func (c Forget) kind() Kind     { return KindForget }
func (c Forget) target() string { return c.SSID }
func (c Forget) validate(s reconcile.State) error {
	if err := requireSSID(c.SSID); err != nil {
		return err
	}
	if s.IsCurrent(c.SSID) {
		return wifi.ErrForgetActive
	}
	if !s.IsSaved(c.SSID) {
		return wifi.ErrNotSaved
	}
	return nil
}

func (c Ping) slot() string                   { return SlotPing }
func (c Ping) kind() Kind                     { return KindPing }
func (c Ping) target() string                 { return c.host() }
func (c Ping) validate(reconcile.State) error { return nil }

func (c Ping) host() string {
	if h := strings.TrimSpace(c.Host); h != "" {
		return h
	}
	return wifi.DefaultPingHost
}

func (Rescan) slot() string                   { return SlotScan }
func (Rescan) kind() Kind                     { return KindScan }
func (Rescan) target() string                 { return "" }
func (Rescan) validate(reconcile.State) error { return nil }

func (Diagnose) slot() string                   { return SlotDiagnose }
func (Diagnose) kind() Kind                     { return KindDiagnose }
func (Diagnose) target() string                 { return "" }
func (Diagnose) validate(reconcile.State) error { return nil }
