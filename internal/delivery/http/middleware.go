package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// corsPrefixes are the routes a cross-origin client may call. The dashboard
// page itself is same-origin and never gets CORS headers.
var corsPrefixes = []string{"/api/", "/charts/"}

// CORSMiddleware answers cross-origin requests under the given path prefixes.
// With no prefixes every path is covered.
func CORSMiddleware(allowedOrigins []string, pathPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !hasPathPrefix(c.Request.URL.Path, pathPrefixes) {
			c.Next()
			return
		}

		origin := c.Request.Header.Get("Origin")
		if !isAllowedOrigin(origin, allowedOrigins) {
			c.Next()
			return
		}

		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", origin)
		header.Set("Access-Control-Allow-Credentials", "true")
		header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type, Accept")
		header.Set("Access-Control-Max-Age", "3600")
		header.Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func hasPathPrefix(path string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// isAllowedOrigin matches exactly, or by prefix when the entry ends in *
func isAllowedOrigin(origin string, allowedOrigins []string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range allowedOrigins {
		if prefix, ok := strings.CutSuffix(allowed, "*"); ok {
			if strings.HasPrefix(origin, prefix) {
				return true
			}
		} else if origin == allowed {
			return true
		}
	}
	return false
}

// LoggerMiddleware logs requests
func LoggerMiddleware() gin.HandlerFunc {
	return gin.Logger()
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}
