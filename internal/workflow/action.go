package workflow

import (
	"github.com/google/uuid"

	"github.com/jlbmaritime/hotspotctl/wifi"
)

// Kind is the type of user action.
type Kind int

const (
	KindConnect Kind = iota
	KindForget
	KindPing
	KindScan
	KindDiagnose
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindForget:
		return "forget"
	case KindPing:
		return "ping"
	case KindScan:
		return "scan"
	case KindDiagnose:
		return "diagnose"
	}
	return "unknown"
}

// Status is the lifecycle position of an action.
type Status int

const (
	StatusPending Status = iota
	StatusSucceeded
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Done reports whether the action has finished.
func (s Status) Done() bool {
	return s != StatusPending
}

// Action is one submitted user action.
type Action struct {
	ID      uuid.UUID
	Kind    Kind
	Target  string
	Status  Status
	Message string
}

// Event reports progress of an action to the presentation layer.
type Event struct {
	Slot   string
	Action Action

	// Toast is a short transient notice. Action.Message is the longer form
	// meant for inline display, and is the backend's message verbatim when
	// there is one.
	Toast string

	Ping        *wifi.PingResult
	Diagnostics *wifi.Diagnostics

	// CloseModal asks the presentation layer to dismiss the password dialog.
	CloseModal bool

	Err error
}

// Slot names. Connect and forget slots are per SSID; see ConnectSlot and
// ForgetSlot.
const (
	SlotScan     = "scan"
	SlotPing     = "ping"
	SlotModal    = "modal"
	SlotDiagnose = "diagnose"
)

// ConnectSlot is the slot of a saved-network reconnect to ssid.
func ConnectSlot(ssid string) string { return "connect:" + ssid }

// ForgetSlot is the slot of forgetting ssid.
func ForgetSlot(ssid string) string { return "forget:" + ssid }
