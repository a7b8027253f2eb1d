package mock

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jlbmaritime/hotspotctl/wifi"
)

// Handler serves the wifi manager REST API on top of a Backend, so clients
// can be exercised against the real wire format.
type Handler struct {
	backend *Backend
	mux     *http.ServeMux

	// Username and Password enable basic auth when either is set.
	Username string
	Password string
}

// NewHandler returns a Handler for b.
func NewHandler(b *Backend) *Handler {
	h := &Handler{backend: b, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /api/current", h.current)
	h.mux.HandleFunc("GET /api/scan", h.scan)
	h.mux.HandleFunc("POST /api/rescan", h.rescan)
	h.mux.HandleFunc("GET /api/saved", h.saved)
	h.mux.HandleFunc("POST /api/connect", h.connect)
	h.mux.HandleFunc("POST /api/forget", h.forget)
	h.mux.HandleFunc("POST /api/ping", h.ping)
	h.mux.HandleFunc("GET /api/diagnostics", h.diagnostics)
	h.mux.HandleFunc("GET /api/status", h.status)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Username != "" || h.Password != "" {
		user, pass, ok := r.BasicAuth()
		if !ok || user != h.Username || pass != h.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="wifi"`)
			http.Error(w, "Unauthorized Access", http.StatusUnauthorized)
			return
		}
	}
	h.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// fail reports err the way the service does: application errors as
// success=false with a message, anything else as a 500.
func fail(w http.ResponseWriter, err error) {
	var appErr *wifi.ApplicationError
	if errors.As(err, &appErr) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": appErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": err.Error()})
}

type networkJSON struct {
	SSID     string `json:"ssid"`
	Signal   string `json:"signal,omitempty"`
	Security string `json:"security,omitempty"`
	LastUsed string `json:"last_used,omitempty"`
}

func encodeNetworks(networks []wifi.Network) []networkJSON {
	out := make([]networkJSON, 0, len(networks))
	for _, n := range networks {
		j := networkJSON{SSID: n.SSID, Security: n.Security}
		if n.Signal > 0 {
			j.Signal = strconv.Itoa(n.Signal)
		}
		if n.LastUsed != nil {
			j.LastUsed = n.LastUsed.UTC().Format(time.DateTime)
		}
		out = append(out, j)
	}
	return out
}

func currentJSON(c wifi.ConnectionState) (any, string) {
	if !c.Connected() {
		return nil, "Not connected"
	}
	ip := c.IP
	if ip == "" {
		ip = "Not connected"
	}
	return map[string]string{"ssid": c.SSID, "connection_name": c.SSID}, ip
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	c, err := h.backend.Current(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	current, ip := currentJSON(c)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "current": current, "ip": ip})
}

func (h *Handler) scan(w http.ResponseWriter, r *http.Request) {
	networks, err := h.backend.Scan(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "networks": encodeNetworks(networks)})
}

func (h *Handler) rescan(w http.ResponseWriter, r *http.Request) {
	networks, err := h.backend.Rescan(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "networks": encodeNetworks(networks)})
}

func (h *Handler) saved(w http.ResponseWriter, r *http.Request) {
	networks, err := h.backend.Saved(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "networks": encodeNetworks(networks)})
}

func (h *Handler) connect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SSID     string `json:"ssid"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SSID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "SSID is required"})
		return
	}
	msg, err := h.backend.Connect(r.Context(), req.SSID, req.Password)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

func (h *Handler) forget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SSID string `json:"ssid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SSID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "SSID is required"})
		return
	}
	msg, err := h.backend.Forget(r.Context(), req.SSID)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Host  string `json:"host"`
		Count int    `json:"count"`
	}{Host: wifi.DefaultPingHost, Count: wifi.DefaultPingCount}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
			return
		}
	}
	res, err := h.backend.Ping(r.Context(), req.Host, req.Count)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     err == nil,
		"host":        res.Host,
		"packet_loss": res.PacketLoss,
		"min_time":    res.MinTime,
		"avg_time":    res.AvgTime,
		"max_time":    res.MaxTime,
		"output":      res.Output,
	})
}

func (h *Handler) diagnostics(w http.ResponseWriter, r *http.Request) {
	d, err := h.backend.Diagnostics(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "diagnostics": d})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	s, err := h.backend.Status(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	current, ip := currentJSON(s.Connection)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"current":     current,
		"ip":          ip,
		"saved_count": s.SavedCount,
	})
}
