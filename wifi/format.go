package wifi

import (
	"fmt"
	"sort"
	"strings"
)

// FormatPing renders a successful ping test: the parsed summary followed by
// the raw output.
func FormatPing(r PingResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ping test to %s:\n\n", r.Host)
	if r.PacketLoss != "" {
		fmt.Fprintf(&b, "Packet Loss: %s\n", r.PacketLoss)
	}
	if r.MinTime != "" {
		fmt.Fprintf(&b, "Min: %s\n", r.MinTime)
		fmt.Fprintf(&b, "Avg: %s\n", r.AvgTime)
		fmt.Fprintf(&b, "Max: %s\n", r.MaxTime)
	}
	fmt.Fprintf(&b, "\n%s", r.Output)
	return b.String()
}

// FormatPingFailure renders a ping test the backend reported as failed.
func FormatPingFailure(r PingResult) string {
	return fmt.Sprintf("Ping test failed:\n\n%s", r.Output)
}

// FormatDiagnostics renders diagnostics as indented plain text.
func FormatDiagnostics(d Diagnostics) string {
	var b strings.Builder

	b.WriteString("Interface Status:\n")
	names := make([]string, 0, len(d.Interfaces))
	for name := range d.Interfaces {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %s: %s\n", name, d.Interfaces[name].Status)
	}

	if len(d.ConnectionStats) > 0 {
		b.WriteString("\nConnection Statistics:\n")
		keys := make([]string, 0, len(d.ConnectionStats))
		for k := range d.ConnectionStats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, d.ConnectionStats[k])
		}
	}

	fmt.Fprintf(&b, "\nGateway: %s\n", d.Gateway)
	fmt.Fprintf(&b, "DNS Servers: %s\n", strings.Join(d.DNSServers, ", "))
	return b.String()
}
