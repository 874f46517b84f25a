package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-places-api/pkg/response"
)

// AllowPrivateIP matches loopback and private (RFC 1918/4193) clients.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// Only lets requests through for which allow returns true and answers 403
// otherwise.
func Only(allow AllowFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(c) {
			response.Fail(c, http.StatusForbidden, "Forbidden", nil)
			return
		}
		c.Next()
	}
}
