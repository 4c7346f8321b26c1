package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Match     MatchConfig
	WebSocket WebSocketConfig
	Redis     RedisConfig
	WebRTC    WebRTCConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// MatchConfig holds the matchmaking timings.
type MatchConfig struct {
	TickInterval time.Duration
	SkipWindow   time.Duration
	NameMaxRunes int
}

// WebSocketConfig holds keep-alive and framing settings for client connections.
type WebSocketConfig struct {
	PingInterval    time.Duration
	PingTimeout     time.Duration
	MaxMessageBytes int64
}

// RedisConfig holds Redis connection settings. An empty Addr disables lobby stats publishing.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	StatsChannel string
}

// WebRTCConfig holds STUN/TURN ICE server URLs handed to clients.
type WebRTCConfig struct {
	ICEUrls        []string // e.g. stun:stun.l.google.com:19302 (comma-separated in env)
	TURNUsername   string   // applied to turn: and turns: URLs only
	TURNCredential string
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "4000"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Match: MatchConfig{
			TickInterval: getEnvDuration("PAIR_TICK_MS", time.Millisecond, time.Second),
			SkipWindow:   getEnvDuration("SKIP_WINDOW_SEC", time.Second, 5*time.Minute),
			NameMaxRunes: getEnvInt("NAME_MAX_RUNES", 64),
		},
		WebSocket: WebSocketConfig{
			PingInterval:    getEnvDuration("WS_PING_INTERVAL_SEC", time.Second, 25*time.Second),
			PingTimeout:     getEnvDuration("WS_PING_TIMEOUT_SEC", time.Second, 20*time.Second),
			MaxMessageBytes: int64(getEnvInt("WS_MAX_MESSAGE_BYTES", 65536)),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", ""),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			StatsChannel: getEnv("STATS_CHANNEL", "pairline:lobby"),
		},
		WebRTC: WebRTCConfig{
			ICEUrls:        splitTrim(getEnv("WEBRTC_ICE_URLS", "stun:stun.l.google.com:19302"), ","),
			TURNUsername:   getEnv("WEBRTC_TURN_USERNAME", ""),
			TURNCredential: getEnv("WEBRTC_TURN_CREDENTIAL", ""),
		},
	}
	return cfg, nil
}

// getEnvDuration reads an integer count of unit; non-positive or malformed values use fallback.
func getEnvDuration(key string, unit, fallback time.Duration) time.Duration {
	if n := getEnvInt(key, 0); n > 0 {
		return time.Duration(n) * unit
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
