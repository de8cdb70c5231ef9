package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ofertalia/internal/authz"
	"ofertalia/internal/services"
)

// tolerant to value types (int / int64 / float64 / string)
func getInt64FromCtx(c *gin.Context, key string) (int64, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// getActor resolves the authenticated identity once per request; the core
// only ever sees this explicit value.
func getActor(c *gin.Context) authz.Actor {
	var actor authz.Actor
	if id, ok := getInt64FromCtx(c, "user_id"); ok {
		actor.ID = id
	}
	if role, ok := getInt64FromCtx(c, "role_id"); ok {
		actor.Role = int(role)
	}
	return actor
}

func intQuery(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

var codeStatus = map[services.ErrorCode]int{
	services.CodeValidation:         http.StatusBadRequest,
	services.CodeInvalidTransition:  http.StatusUnprocessableEntity,
	services.CodeForbidden:          http.StatusForbidden,
	services.CodeConflict:           http.StatusConflict,
	services.CodeCapacityExceeded:   http.StatusConflict,
	services.CodePreconditionFailed: http.StatusPreconditionFailed,
	services.CodeNotFound:           http.StatusNotFound,
}

// writeServiceError maps typed business errors to HTTP; anything untyped is a 500.
func writeServiceError(c *gin.Context, err error) {
	if status, ok := codeStatus[services.CodeOf(err)]; ok {
		c.JSON(status, gin.H{"error": err.Error(), "code": string(services.CodeOf(err))})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
