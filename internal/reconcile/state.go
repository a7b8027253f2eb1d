package reconcile

import (
	"time"

	"github.com/jlbmaritime/hotspotctl/wifi"
)

// ListStatus describes how a list section should be presented.
type ListStatus int

const (
	ListLoading ListStatus = iota
	ListLoaded
	ListEmpty
	ListFailed
)

func (s ListStatus) String() string {
	switch s {
	case ListLoading:
		return "loading"
	case ListLoaded:
		return "loaded"
	case ListEmpty:
		return "empty"
	case ListFailed:
		return "failed"
	}
	return "unknown"
}

// State is an immutable snapshot of everything the client knows about the
// device's networks. Slices must not be modified by receivers.
type State struct {
	Connection    wifi.ConnectionState
	ConnectionErr error

	// Saved is the latest successfully fetched saved list. A failed refresh
	// keeps the previous list and sets SavedErr.
	Saved       []wifi.Network
	SavedStatus ListStatus
	SavedErr    error

	// Available is the latest scan minus every saved SSID.
	Available  []wifi.Network
	ScanStatus ListStatus
	ScanErr    error
	// ScanCount is the number of networks the latest scan returned before
	// saved networks were filtered out.
	ScanCount int
	// ScanForced is set when the latest scan outcome came from a rescan.
	ScanForced bool

	Version   uint64
	UpdatedAt time.Time

	savedRaw []wifi.Network
	scan     []wifi.Network
	saved    map[string]struct{}
}

// IsSaved reports whether ssid is in the saved list.
func (s State) IsSaved(ssid string) bool {
	_, ok := s.saved[ssid]
	return ok
}

// IsCurrent reports whether ssid is the active association.
func (s State) IsCurrent(ssid string) bool {
	return ssid != "" && s.Connection.SSID == ssid
}

// CanForget reports whether a forget affordance applies to ssid.
func (s State) CanForget(ssid string) bool {
	return s.IsSaved(ssid) && !s.IsCurrent(ssid)
}

// CanReconnect reports whether ssid can be joined with stored credentials.
func (s State) CanReconnect(ssid string) bool {
	return s.IsSaved(ssid) && !s.IsCurrent(ssid)
}

// Lookup returns the display record for ssid from either list.
func (s State) Lookup(ssid string) (wifi.Network, bool) {
	for _, n := range s.Saved {
		if n.SSID == ssid {
			return n, true
		}
	}
	for _, n := range s.Available {
		if n.SSID == ssid {
			return n, true
		}
	}
	return wifi.Network{}, false
}

// Networks returns the display set: saved networks followed by available
// ones. Every SSID appears at most once.
func (s State) Networks() []wifi.Network {
	out := make([]wifi.Network, 0, len(s.Saved)+len(s.Available))
	out = append(out, s.Saved...)
	return append(out, s.Available...)
}

// ScanMessage is the placeholder shown instead of the available list, or ""
// when there are networks to show.
func (s State) ScanMessage() string {
	switch s.ScanStatus {
	case ListLoading:
		return "Scanning for networks..."
	case ListFailed:
		if s.ScanForced {
			return "Error scanning networks"
		}
		return "Error loading networks"
	case ListEmpty:
		return "No networks found"
	}
	if len(s.Available) == 0 {
		return "No other networks found"
	}
	return ""
}

// SavedMessage is the placeholder shown instead of the saved list, or ""
// when there are networks to show.
func (s State) SavedMessage() string {
	switch {
	case len(s.Saved) > 0:
		return ""
	case s.SavedStatus == ListLoading:
		return "Loading saved networks..."
	case s.SavedStatus == ListFailed:
		return "Error loading saved networks"
	}
	return "No saved networks"
}
