package httptransport

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"aidpal-server-go/internal/domain/auth"
	"aidpal-server-go/internal/platform/logging"
)

// ContextDeviceID is the gin context key holding the authenticated device id.
const ContextDeviceID = "device_id"

// NewAuthMiddleware verifies the Bearer token and, when a Device-Id header is
// present, requires it to match the token's device claim.
func NewAuthMiddleware(authToken *auth.AuthToken, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			RespondError(c, http.StatusUnauthorized, "missing bearer token", nil)
			c.Abort()
			return
		}

		ok, deviceID, err := authToken.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil || !ok {
			logger.WarnTag("auth", "token verification failed: %v", err)
			RespondError(c, http.StatusUnauthorized, "invalid token", nil)
			c.Abort()
			return
		}

		if requested := c.GetHeader("Device-Id"); requested != "" && requested != deviceID {
			logger.WarnTag("auth", "device mismatch: header=%s token=%s", requested, deviceID)
			RespondError(c, http.StatusUnauthorized, "device id does not match token", nil)
			c.Abort()
			return
		}

		c.Set(ContextDeviceID, deviceID)
		c.Next()
	}
}

// DeviceID returns the authenticated device id, or the Device-Id header when
// the request came through an unsecured route.
func DeviceID(c *gin.Context) string {
	if v, ok := c.Get(ContextDeviceID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return c.GetHeader("Device-Id")
}
