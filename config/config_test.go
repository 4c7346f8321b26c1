package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "PAIR_TICK_MS", "SKIP_WINDOW_SEC", "WS_PING_INTERVAL_SEC", "WS_PING_TIMEOUT_SEC", "REDIS_ADDR", "WEBRTC_ICE_URLS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, time.Second, cfg.Match.TickInterval)
	assert.Equal(t, 5*time.Minute, cfg.Match.SkipWindow)
	assert.Equal(t, 25*time.Second, cfg.WebSocket.PingInterval)
	assert.Equal(t, 20*time.Second, cfg.WebSocket.PingTimeout)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.WebRTC.ICEUrls)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PAIR_TICK_MS", "250")
	t.Setenv("SKIP_WINDOW_SEC", "30")
	t.Setenv("WS_PING_TIMEOUT_SEC", "-4")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("WEBRTC_ICE_URLS", "stun:a.example:3478, turn:b.example:3478 ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Match.TickInterval)
	assert.Equal(t, 30*time.Second, cfg.Match.SkipWindow)
	assert.Equal(t, 20*time.Second, cfg.WebSocket.PingTimeout, "non-positive falls back")
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"stun:a.example:3478", "turn:b.example:3478"}, cfg.WebRTC.ICEUrls)
}
