package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OriginPolicy decides which browser origins may call the API and open WebSockets.
type OriginPolicy struct {
	any     bool
	origins map[string]bool
}

// NewOriginPolicy parses "*" or a comma-separated list (e.g. "http://localhost:3000,https://app.example").
// An empty list allows any origin.
func NewOriginPolicy(allowedOrigins string) OriginPolicy {
	m := parseOrigins(allowedOrigins)
	return OriginPolicy{any: len(m) == 0 || m["*"], origins: m}
}

// Allowed reports whether origin may connect. Requests without an Origin header
// (non-browser clients) are allowed.
func (p OriginPolicy) Allowed(origin string) bool {
	return p.any || origin == "" || p.origins[origin]
}

// CORS returns a middleware that sets CORS headers for cross-origin requests.
func CORS(policy OriginPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowOrigin := ""
		if policy.any {
			allowOrigin = "*"
		} else if origin != "" && policy.origins[origin] {
			allowOrigin = origin
			c.Header("Vary", "Origin")
		}
		if allowOrigin != "" {
			c.Header("Access-Control-Allow-Origin", allowOrigin)
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
			c.Header("Access-Control-Max-Age", "86400")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func parseOrigins(s string) map[string]bool {
	m := make(map[string]bool)
	for _, o := range strings.Split(strings.TrimSpace(s), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			m[o] = true
		}
	}
	return m
}
