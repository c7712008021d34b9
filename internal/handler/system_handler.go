package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthPingTimeout = 2 * time.Second

// Health reports liveness and whether the analytics store answers.
// It always returns 200 because analytics outages do not affect content serving.
func (a *API) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	reachable := true
	if err := a.store.Ping(ctx); err != nil {
		reachable = false
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"timestamp":      time.Now().UTC(),
		"store":          a.store.Name(),
		"storeReachable": reachable,
	})
}
