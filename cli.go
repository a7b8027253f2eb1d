package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jlbmaritime/hotspotctl/internal/helpers"
	"github.com/jlbmaritime/hotspotctl/internal/reconcile"
	"github.com/jlbmaritime/hotspotctl/internal/workflow"
	"github.com/jlbmaritime/hotspotctl/wifi"
	"github.com/jlbmaritime/hotspotctl/wifi/discovery"
	"github.com/jlbmaritime/hotspotctl/wifi/mock"
)

// actionError is a failed workflow action. Its text is the message shown to
// the user; the cause stays available to errors.Is.
type actionError struct {
	msg string
	err error
}

func (e *actionError) Error() string { return e.msg }
func (e *actionError) Unwrap() error { return e.err }

func formatNetwork(n wifi.Network) string {
	var parts []string
	if n.Signal > 0 {
		parts = append(parts, fmt.Sprintf("%d%%", n.Signal))
	}
	// Saved networks out of range have no known security.
	if n.Signal > 0 || n.Security != "" {
		if n.IsOpen() {
			parts = append(parts, "open")
		} else {
			parts = append(parts, "secure")
		}
	}
	if n.IsSaved {
		parts = append(parts, "saved")
	}
	if n.IsCurrent {
		parts = append(parts, "current")
	}
	if n.IsSaved && n.Signal == 0 && n.LastUsed != nil {
		parts = append(parts, "used "+helpers.FormatDuration(*n.LastUsed))
	}
	return strings.Join(parts, ", ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runStatus(ctx context.Context, w io.Writer, b wifi.Backend) error {
	s, err := b.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	if s.Connection.Connected() {
		fmt.Fprintf(w, "Connected to %s", s.Connection.SSID)
		if s.Connection.IP != "" {
			fmt.Fprintf(w, " (%s)", s.Connection.IP)
		}
		fmt.Fprintln(w)
	} else {
		fmt.Fprintln(w, "Not connected")
	}
	fmt.Fprintf(w, "Saved networks: %d\n", s.SavedCount)
	return nil
}

func printNetworks(w io.Writer, networks []wifi.Network) {
	for _, n := range networks {
		fmt.Fprintf(w, "%s\t%s\n", n.SSID, formatNetwork(n))
	}
}

// runList prints saved networks followed by the other networks in range.
func runList(ctx context.Context, w io.Writer, asJSON bool, b wifi.Backend) error {
	rec := reconcile.New(b, nil)
	if err := rec.Load(ctx); err != nil {
		return fmt.Errorf("failed to list networks: %w", err)
	}
	s := rec.State()
	saved := append([]wifi.Network(nil), s.Saved...)
	available := append([]wifi.Network(nil), s.Available...)
	wifi.SortNetworks(saved)
	wifi.SortNetworks(available)

	if asJSON {
		return writeJSON(w, append(saved, available...))
	}
	printNetworks(w, saved)
	printNetworks(w, available)
	return nil
}

// runScan prints the networks in range that are not saved.
func runScan(ctx context.Context, w io.Writer, rescan, asJSON bool, b wifi.Backend) error {
	rec := reconcile.New(b, nil)
	if err := rec.RefreshSavedNetworks(ctx); err != nil {
		return fmt.Errorf("failed to load saved networks: %w", err)
	}
	if err := rec.RefreshScan(ctx, rescan); err != nil {
		return fmt.Errorf("failed to scan: %w", err)
	}
	s := rec.State()
	available := append([]wifi.Network(nil), s.Available...)
	wifi.SortNetworks(available)

	if asJSON {
		return writeJSON(w, available)
	}
	if msg := s.ScanMessage(); msg != "" {
		fmt.Fprintln(w, msg)
		return nil
	}
	printNetworks(w, available)
	return nil
}

// runAction dispatches cmd through a workflow controller and waits for the
// outcome. Successful and declined actions print their message; failures
// are returned.
func runAction(ctx context.Context, w io.Writer, b wifi.Backend, confirmer workflow.Confirmer, pingCount int, cmd workflow.Command) (workflow.Event, error) {
	rec := reconcile.New(b, nil)
	if err := rec.Refresh(ctx); err != nil {
		return workflow.Event{}, fmt.Errorf("failed to load network state: %w", err)
	}

	var (
		mu   sync.Mutex
		last workflow.Event
	)
	ctrl := workflow.New(b, rec, func(e workflow.Event) {
		if !e.Action.Status.Done() {
			return
		}
		mu.Lock()
		last = e
		mu.Unlock()
	}, workflow.Options{
		Confirmer:       confirmer,
		ReconnectDelay:  time.Millisecond,
		ModalCloseDelay: time.Millisecond,
		PingCount:       pingCount,
	})
	defer ctrl.Close()
	stop := context.AfterFunc(ctx, ctrl.Close)
	defer stop()

	if err := ctrl.Dispatch(cmd); err != nil {
		return workflow.Event{}, err
	}
	ctrl.Wait()

	mu.Lock()
	defer mu.Unlock()
	switch last.Action.Status {
	case workflow.StatusFailed:
		return last, &actionError{msg: last.Action.Message, err: last.Err}
	case workflow.StatusCancelled:
		if err := ctx.Err(); err != nil {
			return last, err
		}
		fmt.Fprintln(w, "Cancelled")
	default:
		fmt.Fprintln(w, last.Action.Message)
	}
	return last, nil
}

// runConnect reconnects to a saved network, or joins with passphrase.
func runConnect(ctx context.Context, w io.Writer, b wifi.Backend, confirmer workflow.Confirmer, ssid, passphrase string) error {
	var cmd workflow.Command = workflow.Join{SSID: ssid, Password: passphrase}
	if passphrase == "" {
		saved, err := b.Saved(ctx)
		if err != nil {
			return fmt.Errorf("failed to load saved networks: %w", err)
		}
		for _, n := range saved {
			if n.SSID == ssid {
				cmd = workflow.ConnectSaved{SSID: ssid}
				break
			}
		}
	}
	_, err := runAction(ctx, w, b, confirmer, 0, cmd)
	return err
}

func runForget(ctx context.Context, w io.Writer, b wifi.Backend, confirmer workflow.Confirmer, ssid string) error {
	_, err := runAction(ctx, w, b, confirmer, 0, workflow.Forget{SSID: ssid})
	return err
}

func runPing(ctx context.Context, w io.Writer, b wifi.Backend, host string, count int) error {
	_, err := runAction(ctx, w, b, nil, count, workflow.Ping{Host: host})
	return err
}

func runDiag(ctx context.Context, w io.Writer, asJSON bool, b wifi.Backend) error {
	d, err := b.Diagnostics(ctx)
	if err != nil {
		return fmt.Errorf("failed to load diagnostics: %w", err)
	}
	if asJSON {
		return writeJSON(w, d)
	}
	fmt.Fprintln(w, wifi.FormatDiagnostics(d))
	return nil
}

// deviceScanner finds wifi manager devices on the local network.
type deviceScanner interface {
	Scan(ctx context.Context) ([]discovery.Device, error)
}

func runDiscover(ctx context.Context, w io.Writer, s deviceScanner) error {
	devices, err := s.Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover devices: %w", err)
	}
	if len(devices) == 0 {
		fmt.Fprintln(w, "No devices found")
		return nil
	}
	for _, d := range devices {
		fmt.Fprintln(w, d)
	}
	return nil
}

// runServeMock serves the wifi manager REST API backed by b on ln until ctx
// is done.
func runServeMock(ctx context.Context, w io.Writer, ln net.Listener, b *mock.Backend) error {
	srv := &http.Server{
		Handler:           mock.NewHandler(b),
		ReadHeaderTimeout: 10 * time.Second,
	}
	fmt.Fprintf(w, "Serving mock wifi manager on http://%s\n", ln.Addr())

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return fmt.Errorf("mock server failed: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
