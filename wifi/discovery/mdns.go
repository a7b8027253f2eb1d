// Package discovery finds wifi manager devices on the local network over
// mDNS.
package discovery

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type the device's web server advertises.
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain.
	ServiceDomain = "local."

	// DefaultHost is the hostname the device answers to.
	DefaultHost = "wifi"

	DefaultScanTimeout = 5 * time.Second
)

// Device is a discovered wifi manager.
type Device struct {
	Instance string
	HostName string
	IP       net.IP
	Port     int
	Text     []string
}

// URL is the base URL of the device's API.
func (d Device) URL() string {
	host := d.HostName
	if d.IP != nil {
		host = d.IP.String()
	}
	host = strings.TrimSuffix(host, ".")
	if d.Port == 0 || d.Port == 80 {
		return "http://" + host
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(d.Port))
}

func (d Device) String() string {
	return fmt.Sprintf("%s (%s) %s", d.Instance, strings.TrimSuffix(d.HostName, "."), d.URL())
}

// Scanner browses for devices.
type Scanner struct {
	Timeout time.Duration
	// Host restricts results to devices whose hostname starts with Host.
	// Empty accepts every HTTP service.
	Host string
}

// NewScanner creates a scanner for the default device hostname.
func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout, Host: DefaultHost}
}

// Scan browses until the timeout or ctx expires and returns the devices
// found, sorted by hostname.
func (s *Scanner) Scan(ctx context.Context) ([]Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan []Device)
	go func() {
		var devices []Device
		seen := map[string]bool{}
		for entry := range entries {
			d, ok := s.parseServiceEntry(entry)
			if !ok || seen[d.URL()] {
				continue
			}
			seen[d.URL()] = true
			devices = append(devices, d)
		}
		done <- devices
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	devices := <-done
	sort.Slice(devices, func(i, j int) bool { return devices[i].HostName < devices[j].HostName })
	return devices, nil
}

// First returns the first matching device, or an error if none answers in
// time.
func (s *Scanner) First(ctx context.Context) (Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return Device{}, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan Device, 1)
	go func() {
		for entry := range entries {
			if d, ok := s.parseServiceEntry(entry); ok {
				select {
				case found <- d:
					cancel()
				default:
				}
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return Device{}, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case d := <-found:
		return d, nil
	case <-ctx.Done():
		select {
		case d := <-found:
			return d, nil
		default:
		}
		return Device{}, fmt.Errorf("no %s.local device found within %s", s.Host, s.timeout())
	}
}

func (s *Scanner) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultScanTimeout
	}
	return s.Timeout
}

// parseServiceEntry converts a zeroconf service entry to a Device. It
// returns false for entries that are not the device.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) (Device, bool) {
	if entry == nil || entry.HostName == "" {
		return Device{}, false
	}
	if s.Host != "" {
		label, _, _ := strings.Cut(entry.HostName, ".")
		if !strings.EqualFold(label, s.Host) {
			return Device{}, false
		}
	}

	d := Device{
		Instance: entry.Instance,
		HostName: entry.HostName,
		Port:     entry.Port,
		Text:     entry.Text,
	}
	if len(entry.AddrIPv4) > 0 {
		d.IP = entry.AddrIPv4[0]
	} else if len(entry.AddrIPv6) > 0 {
		d.IP = entry.AddrIPv6[0]
	}
	return d, true
}
