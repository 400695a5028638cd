package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	currentAdminKey  = "currentAdminID"
	currentScreenKey = "currentScreenID"
)

// retrieves the admin id from Gin context (after JWTMiddleware has run).
func GetCurrentAdminID(c *gin.Context) (int, bool) {
	v, exists := c.Get(currentAdminKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}

// retrieves the screen id from Gin context (after ScreenAuth has run).
func GetCurrentScreenID(c *gin.Context) (int, bool) {
	v, exists := c.Get(currentScreenKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}
