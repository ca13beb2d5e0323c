package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PipelineAuthMiddleware guards the pipeline routes with the X-API-Key
// header. With no key configured the routes answer 503.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	expected := []byte(apiKey)
	return func(c *gin.Context) {
		switch {
		case len(expected) == 0:
			abortWithError(c, http.StatusServiceUnavailable, "PIPELINE_NOT_CONFIGURED", "Pipeline endpoints are not configured")
		case subtle.ConstantTimeCompare([]byte(c.GetHeader("X-API-Key")), expected) != 1:
			abortWithError(c, http.StatusUnauthorized, "INVALID_API_KEY", "Invalid or missing API key")
		default:
			c.Next()
		}
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}
