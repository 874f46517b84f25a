package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/pkg/helpers"
	"github.com/oksasatya/go-places-api/pkg/response"
)

// CtxUserIDKey mirrors the caller id into the gin context for rate limiting.
const CtxUserIDKey = "userID"

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller identity; ok is false on
// unauthenticated requests.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != ""
}

// Auth requires a valid bearer token. OPTIONS requests pass through so
// browser pre-flights succeed.
func Auth(jwt *helpers.JWTManager, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		claims, err := jwt.Verify(bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			if logger != nil {
				logger.WithError(err).WithField("path", c.Request.URL.Path).Debug("authentication failed")
			}
			response.Fail(c, http.StatusUnauthorized, "Authentication failed!", nil)
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), Identity{UserID: claims.UserID}))
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
