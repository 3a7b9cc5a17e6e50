package ratelimit

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// skipPaths are exempt from rate limiting.
var skipPaths = []string{
	"/api/ping",
	"/health",
}

// Middleware returns gin middleware enforcing the limiter for every request
// except the skip-listed paths.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if shouldSkip(c.Request.URL.Path) {
			c.Next()
			return
		}

		if !l.Allow(ClientIP(c.Request)) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, please try again later",
			})
			return
		}

		c.Next()
	}
}

func shouldSkip(path string) bool {
	for _, p := range skipPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// ClientIP derives the client identity: first X-Forwarded-For hop, then
// X-Real-IP, then the transport-level peer address.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
