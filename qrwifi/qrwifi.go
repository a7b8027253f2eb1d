// Package qrwifi renders the WIFI: join payload understood by phone cameras
// as a terminal QR code.
package qrwifi

import (
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Security is the authentication type encoded in the payload.
type Security int

const (
	SecurityUnknown Security = iota
	SecurityOpen
	SecurityWEP
	SecurityWPA
)

// ParseSecurity maps the backend's security description to a Security.
func ParseSecurity(s string) Security {
	switch u := strings.ToUpper(strings.TrimSpace(s)); {
	case u == "", u == "--", u == "OPEN", u == "NONE":
		return SecurityOpen
	case strings.Contains(u, "WEP"):
		return SecurityWEP
	case strings.Contains(u, "WPA"), u == "SECURED":
		return SecurityWPA
	}
	return SecurityUnknown
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`,`, `\,`,
	`:`, `\:`,
	`"`, `\"`,
)

// Escape handles the special character escaping for SSID and Password.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Payload builds the WIFI: connection string.
func Payload(ssid, password string, security Security, hidden bool) string {
	var b strings.Builder
	b.WriteString("WIFI:S:")
	b.WriteString(Escape(ssid))
	b.WriteString(";")

	switch security {
	case SecurityWPA:
		b.WriteString("T:WPA;P:")
		b.WriteString(Escape(password))
		b.WriteString(";")
	case SecurityWEP:
		b.WriteString("T:WEP;P:")
		b.WriteString(Escape(password))
		b.WriteString(";")
	case SecurityOpen:
		b.WriteString("T:nopass;")
	default:
		// Most readers assume WPA when T is missing.
		if password != "" {
			b.WriteString("P:")
			b.WriteString(Escape(password))
			b.WriteString(";")
		}
	}

	if hidden {
		b.WriteString("H:true;")
	}
	b.WriteString(";")
	return b.String()
}

// Generate returns the payload as a compact QR code for the terminal.
func Generate(ssid, password string, security Security, hidden bool) (string, error) {
	q, err := qrcode.New(Payload(ssid, password, security, hidden), qrcode.Medium)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}
