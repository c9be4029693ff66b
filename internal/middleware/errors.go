package middleware

import (
	"github.com/gin-gonic/gin"
)

// ErrorStyle selects the body written when a middleware rejects a request.
type ErrorStyle int

const (
	// StyleEnvelope writes {"success": false, "error": {"code", "message"}}.
	StyleEnvelope ErrorStyle = iota
	// StylePlain writes {"error": message}, the shape of the stateless generation API.
	StylePlain
)

func abortError(c *gin.Context, style ErrorStyle, status int, code, message string) {
	if style == StylePlain {
		c.AbortWithStatusJSON(status, gin.H{"error": message})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}
