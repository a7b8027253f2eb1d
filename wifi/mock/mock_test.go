package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlbmaritime/hotspotctl/wifi"
)

func newTestBackend() *Backend {
	b := New()
	b.ActionSleep = 0
	return b
}

func findNetwork(networks []wifi.Network, ssid string) *wifi.Network {
	for i := range networks {
		if networks[i].SSID == ssid {
			return &networks[i]
		}
	}
	return nil
}

func TestNew(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()

	current, err := b.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "HideYoKidsHideYoWiFi", current.SSID)

	saved, err := b.Saved(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, saved)

	visible, err := b.Scan(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, visible)
}

func TestConnectSavedWithoutPassword(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()

	msg, err := b.Connect(ctx, "Password is password", "")
	require.NoError(t, err)
	assert.Equal(t, "Connected successfully", msg)

	current, err := b.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Password is password", current.SSID)
}

func TestConnectWrongPassword(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()

	_, err := b.Connect(ctx, "TacoBoutAGoodSignal", "burritos")
	require.ErrorIs(t, err, wifi.ErrApplication)
	assert.Equal(t, "Invalid password", err.Error())

	msg, err := b.Connect(ctx, "TacoBoutAGoodSignal", "tacos")
	require.NoError(t, err)
	assert.Equal(t, "Connected successfully", msg)

	saved, err := b.Saved(ctx)
	require.NoError(t, err)
	assert.NotNil(t, findNetwork(saved, "TacoBoutAGoodSignal"))
}

func TestConnectOpenNetwork(t *testing.T) {
	b := newTestBackend()
	_, err := b.Connect(context.Background(), "Unencrypted_Honeypot", "")
	assert.NoError(t, err)
}

func TestConnectUnknownNetwork(t *testing.T) {
	b := newTestBackend()
	_, err := b.Connect(context.Background(), "Nowhere", "secret")
	assert.ErrorIs(t, err, wifi.ErrApplication)
}

func TestForget(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()

	_, err := b.Forget(ctx, "HideYoKidsHideYoWiFi")
	require.Error(t, err)
	assert.Equal(t, "Cannot forget currently active network", err.Error())

	msg, err := b.Forget(ctx, "GET off my LAN")
	require.NoError(t, err)
	assert.Equal(t, "Network forgotten", msg)

	saved, err := b.Saved(ctx)
	require.NoError(t, err)
	assert.Nil(t, findNetwork(saved, "GET off my LAN"))
}

func TestPing(t *testing.T) {
	b := newTestBackend()
	res, err := b.Ping(context.Background(), "example.com", 2)
	require.NoError(t, err)
	assert.Equal(t, "example.com", res.Host)
	assert.Equal(t, "0%", res.PacketLoss)
	assert.Contains(t, res.Output, "icmp_seq=2")
	assert.NotContains(t, res.Output, "icmp_seq=3")
}

func TestCalls(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()
	_, _ = b.Current(ctx)
	_, _ = b.Connect(ctx, "Cafe", "")
	assert.Equal(t, []string{"current", "connect:Cafe"}, b.Calls())
}

func TestActionSleepHonoursContext(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
