package qrwifi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, `a\;b\,c\:d\\e\"f`, Escape(`a;b,c:d\e"f`))
}

func TestPayload(t *testing.T) {
	tests := []struct {
		name     string
		ssid     string
		password string
		security Security
		hidden   bool
		want     string
	}{
		{"wpa", "Cafe", "latte", SecurityWPA, false, "WIFI:S:Cafe;T:WPA;P:latte;;"},
		{"wep", "Old", "abc", SecurityWEP, false, "WIFI:S:Old;T:WEP;P:abc;;"},
		{"open", "Library", "", SecurityOpen, false, "WIFI:S:Library;T:nopass;;"},
		{"hidden", "Attic", "pw", SecurityWPA, true, "WIFI:S:Attic;T:WPA;P:pw;H:true;;"},
		{"escaped", "a;b", "c:d", SecurityWPA, false, `WIFI:S:a\;b;T:WPA;P:c\:d;;`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Payload(tt.ssid, tt.password, tt.security, tt.hidden))
		})
	}
}

func TestParseSecurity(t *testing.T) {
	assert.Equal(t, SecurityOpen, ParseSecurity("Open"))
	assert.Equal(t, SecurityOpen, ParseSecurity("--"))
	assert.Equal(t, SecurityWPA, ParseSecurity("Secured"))
	assert.Equal(t, SecurityWPA, ParseSecurity("WPA1 WPA2"))
	assert.Equal(t, SecurityWEP, ParseSecurity("WEP"))
	assert.Equal(t, SecurityUnknown, ParseSecurity("802.1X"))
}

func TestGenerate(t *testing.T) {
	out, err := Generate("Cafe", "latte", SecurityWPA, false)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
