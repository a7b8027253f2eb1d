// Package reconcile merges the device's current connection, saved networks and
// scan results into a single consistent snapshot.
package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jlbmaritime/hotspotctl/wifi"
)

// Reconciler is the single writer of network state. Every applied update
// publishes a new State to subscribers.
type Reconciler struct {
	backend wifi.Backend
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	state  State
	subs   map[int]func(State)
	nextID int

	pubMu     sync.Mutex
	published uint64
}

// New creates a Reconciler. A nil logger uses slog.Default.
func New(b wifi.Backend, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		backend: b,
		logger:  logger,
		now:     time.Now,
		subs:    map[int]func(State){},
	}
}

// State returns the latest snapshot.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Subscribe registers fn to receive every published snapshot, in order. fn
// is called synchronously and must not block. The returned func removes it.
func (r *Reconciler) Subscribe(fn func(State)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// update applies fn to the state under the lock, then publishes the result.
func (r *Reconciler) update(fn func(*State)) State {
	r.mu.Lock()
	fn(&r.state)
	r.rebuild()
	r.state.Version++
	r.state.UpdatedAt = r.now()
	snapshot := r.state
	subs := make([]func(State), 0, len(r.subs))
	for _, sub := range r.subs {
		subs = append(subs, sub)
	}
	r.mu.Unlock()

	r.pubMu.Lock()
	defer r.pubMu.Unlock()
	// A later snapshot already reached subscribers and includes this update.
	if snapshot.Version <= r.published {
		return snapshot
	}
	r.published = snapshot.Version
	for _, sub := range subs {
		sub(snapshot)
	}
	return snapshot
}

// rebuild recomputes the derived fields. Callers hold r.mu. Slices are always
// replaced, never modified, so published snapshots stay immutable.
func (r *Reconciler) rebuild() {
	s := &r.state
	current := s.Connection.SSID

	saved := make(map[string]struct{}, len(s.savedRaw))
	list := make([]wifi.Network, 0, len(s.savedRaw))
	for _, n := range s.savedRaw {
		if _, dup := saved[n.SSID]; dup || n.SSID == "" {
			continue
		}
		saved[n.SSID] = struct{}{}
		n.IsSaved = true
		n.IsCurrent = current != "" && n.SSID == current
		if n.Signal == 0 {
			n.Signal = signalOf(s.scan, n.SSID)
		}
		if n.Security == "" {
			n.Security = securityOf(s.scan, n.SSID)
		}
		list = append(list, n)
	}
	s.Saved = list
	s.saved = saved

	available := make([]wifi.Network, 0, len(s.scan))
	seen := make(map[string]struct{}, len(s.scan))
	for _, n := range s.scan {
		if _, ok := saved[n.SSID]; ok {
			continue
		}
		if _, dup := seen[n.SSID]; dup || n.SSID == "" {
			continue
		}
		seen[n.SSID] = struct{}{}
		n.IsSaved = false
		n.IsCurrent = current != "" && n.SSID == current
		available = append(available, n)
	}
	s.Available = available
}

func signalOf(networks []wifi.Network, ssid string) int {
	for _, n := range networks {
		if n.SSID == ssid {
			return n.Signal
		}
	}
	return 0
}

func securityOf(networks []wifi.Network, ssid string) string {
	for _, n := range networks {
		if n.SSID == ssid {
			return n.Security
		}
	}
	return ""
}

// RefreshCurrentConnection fetches the active connection. No association is
// a disconnected state, not an error. On failure the previous connection is
// kept and ConnectionErr is set.
func (r *Reconciler) RefreshCurrentConnection(ctx context.Context) error {
	conn, err := r.backend.Current(ctx)
	if err != nil {
		r.logger.Warn("refreshing current connection", "error", err)
	}
	r.update(func(s *State) {
		s.ConnectionErr = err
		if err == nil {
			s.Connection = conn
		}
	})
	return err
}

// RefreshSavedNetworks replaces the saved list. On failure the list is left
// unchanged and SavedErr is set.
func (r *Reconciler) RefreshSavedNetworks(ctx context.Context) error {
	saved, err := r.backend.Saved(ctx)
	if err != nil {
		r.logger.Warn("refreshing saved networks", "error", err)
	}
	r.update(func(s *State) {
		s.SavedErr = err
		switch {
		case err != nil:
			if s.SavedStatus == ListLoading {
				s.SavedStatus = ListFailed
			}
		case len(saved) == 0:
			s.savedRaw = nil
			s.SavedStatus = ListEmpty
		default:
			s.savedRaw = saved
			s.SavedStatus = ListLoaded
		}
	})
	return err
}

// RefreshScan replaces the scan results, from the cached scan or from a
// fresh one when forceRescan is set.
func (r *Reconciler) RefreshScan(ctx context.Context, forceRescan bool) error {
	r.update(func(s *State) {
		s.ScanStatus = ListLoading
		s.ScanErr = nil
		s.ScanForced = forceRescan
	})

	var (
		scan []wifi.Network
		err  error
	)
	if forceRescan {
		scan, err = r.backend.Rescan(ctx)
	} else {
		scan, err = r.backend.Scan(ctx)
	}
	if err != nil {
		r.logger.Warn("scanning", "rescan", forceRescan, "error", err)
	}

	r.update(func(s *State) {
		s.ScanErr = err
		s.ScanForced = forceRescan
		switch {
		case err != nil:
			s.ScanStatus = ListFailed
		case len(scan) == 0:
			s.scan = nil
			s.ScanCount = 0
			s.ScanStatus = ListEmpty
		default:
			s.scan = scan
			s.ScanCount = len(scan)
			s.ScanStatus = ListLoaded
		}
	})
	return err
}

// Refresh fetches the current connection and the saved list concurrently.
// This is the unit of work the poller runs.
func (r *Reconciler) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return r.RefreshCurrentConnection(ctx) })
	g.Go(func() error { return r.RefreshSavedNetworks(ctx) })
	return g.Wait()
}

// Load performs the initial load: current connection, saved list and the
// cached scan.
func (r *Reconciler) Load(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return r.RefreshCurrentConnection(ctx) })
	g.Go(func() error { return r.RefreshSavedNetworks(ctx) })
	g.Go(func() error { return r.RefreshScan(ctx, false) })
	return g.Wait()
}
