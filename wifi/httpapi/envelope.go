package httpapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jlbmaritime/hotspotctl/wifi"
)

// notConnectedIP is what the service reports as ip when wlan0 has no address.
const notConnectedIP = "Not connected"

// lastUsedLayouts are the timestamp formats the service's credential store
// emits for last_used.
var lastUsedLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// envelope is the shape shared by every response.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func (e envelope) ok() bool {
	return e.Success != nil && *e.Success
}

// flexInt decodes a JSON number or a numeric string, as the service reports
// signal strength as either.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Unparseable signal is treated as unknown rather than failing the list.
			*f = 0
			return nil
		}
		*f = flexInt(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

func (f flexInt) percent() int {
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	}
	return int(f)
}

type networkDTO struct {
	SSID     string  `json:"ssid"`
	Signal   flexInt `json:"signal"`
	Security string  `json:"security"`
	LastUsed string  `json:"last_used"`
}

func (n networkDTO) network(saved bool) wifi.Network {
	out := wifi.Network{
		SSID:     n.SSID,
		Signal:   n.Signal.percent(),
		Security: n.Security,
		IsSaved:  saved,
	}
	if n.LastUsed != "" {
		for _, layout := range lastUsedLayouts {
			if t, err := time.ParseInLocation(layout, n.LastUsed, time.UTC); err == nil {
				out.LastUsed = &t
				break
			}
		}
	}
	return out
}

// networks converts a response list, dropping entries without an SSID and
// repeated SSIDs.
func networks(in []networkDTO, saved bool) []wifi.Network {
	out := make([]wifi.Network, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, n := range in {
		if n.SSID == "" {
			continue
		}
		if _, ok := seen[n.SSID]; ok {
			continue
		}
		seen[n.SSID] = struct{}{}
		out = append(out, n.network(saved))
	}
	return out
}

type networksResponse struct {
	envelope
	Networks []networkDTO `json:"networks"`
}

type currentDTO struct {
	SSID           string `json:"ssid"`
	ConnectionName string `json:"connection_name"`
}

type currentResponse struct {
	envelope
	Current *currentDTO `json:"current"`
	IP      string      `json:"ip"`
}

func (r currentResponse) state() wifi.ConnectionState {
	if r.Current == nil || r.Current.SSID == "" {
		return wifi.ConnectionState{}
	}
	ip := r.IP
	if ip == notConnectedIP {
		ip = ""
	}
	return wifi.ConnectionState{SSID: r.Current.SSID, IP: ip}
}

type statusResponse struct {
	currentResponse
	SavedCount int `json:"saved_count"`
}

type messageResponse struct {
	envelope
}

type pingResponse struct {
	envelope
	wifi.PingResult
}

type diagnosticsResponse struct {
	envelope
	Diagnostics wifi.Diagnostics `json:"diagnostics"`
}

type connectRequest struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

type forgetRequest struct {
	SSID string `json:"ssid"`
}

type pingRequest struct {
	Host  string `json:"host"`
	Count int    `json:"count"`
}

// result is implemented by every response type so the client can check the
// envelope after decoding.
type result interface {
	status() envelope
}

func (e envelope) status() envelope { return e }
