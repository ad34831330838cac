package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hajjjaj37/gestion-pole-Dia/pkg/response"
)

// MustGetUserID reads the user_id injected by the JWT middleware. It writes
// a 401 and returns false when missing; callers return immediately.
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, "user_id")
}

// MustGetRole reads the caller's role.
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role")
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}
