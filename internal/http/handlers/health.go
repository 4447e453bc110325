package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks         map[string]Check
	isShuttingDown func() bool
}

// create a new instance of the health handler. isShuttingDown may be nil.
func NewHealthHandler(checks map[string]Check, isShuttingDown func() bool) *HealthHandler {
	if checks == nil {
		checks = map[string]Check{}
	}
	if isShuttingDown == nil {
		isShuttingDown = func() bool { return false }
	}
	return &HealthHandler{checks: checks, isShuttingDown: isShuttingDown}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.isShuttingDown() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
		return
	}

	results, ok := h.run(ctx.Request.Context())

	if !ok {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": results})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "checks": results})
}

// APIHealth keeps the /api/health shape clients already poll.
func (h *HealthHandler) APIHealth(ctx *gin.Context) {
	results, ok := h.run(ctx.Request.Context())

	db := results["db"]
	if db == "" {
		db = "disabled"
	}

	if !ok {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": db})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "db": db})
}

func (h *HealthHandler) run(parent context.Context) (map[string]string, bool) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	ok := true

	for _, name := range names {
		ctx, cancel := context.WithTimeout(parent, time.Second)
		err := h.checks[name](ctx)
		cancel()

		if err != nil {
			results[name] = "down"
			ok = false
			continue
		}
		results[name] = "connected"
	}

	return results, ok
}
