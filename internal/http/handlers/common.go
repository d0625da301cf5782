package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"backend/internal/config"
)

var (
	envMu sync.RWMutex
	env   config.Env
)

// Configure stores the loaded environment for the handler package. Called
// once at startup before the router is mounted.
func Configure(e config.Env) {
	envMu.Lock()
	defer envMu.Unlock()
	env = e
}

func currentEnv() config.Env {
	envMu.RLock()
	defer envMu.RUnlock()
	return env
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		respondError(c, http.StatusBadRequest, "empty_body", "request body is required", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "invalid request payload", err.Error())
		return false
	}
	return true
}
