package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"game_store_backend/internal/realtime"
	"game_store_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// PlatformHandler serves liveness, readiness and the realtime socket.
type PlatformHandler struct {
	checks map[string]HealthCheck
	hub    *realtime.Hub
}

func NewPlatformHandler(checks map[string]HealthCheck, hub *realtime.Hub) *PlatformHandler {
	return &PlatformHandler{checks: checks, hub: hub}
}

func (h *PlatformHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health godoc
// @Summary  Dependency status
// @Tags     platform
// @Success  200 {object} map[string]interface{}
// @Failure  503 {object} map[string]interface{}
// @Router   /health [get]
func (h *PlatformHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	report := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			utils.LogWarn(err, "health check failed", map[string]interface{}{"dependency": name})
			report[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "up"
	}
	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "checks": report})
}

// Realtime upgrades to a websocket streaming change events for ?tables=a,b.
func (h *PlatformHandler) Realtime(c *gin.Context) {
	if h.hub == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeServiceUnavailable, "Realtime updates are disabled.", ""))
		return
	}
	var tables []string
	for _, t := range strings.Split(c.Query("tables"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tables = append(tables, t)
		}
	}
	h.hub.ServeWS(c.Writer, c.Request, tables)
}
