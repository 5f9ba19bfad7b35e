package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

// Check reports on one dependency.
type Check func(ctx context.Context) error

// HealthHandler serves /healthz with dependency checks.
type HealthHandler struct {
	checks map[string]Check
}

// NewHealthHandler creates a health handler. Nil checks are skipped.
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	filtered := make(map[string]Check, len(checks))
	for name, check := range checks {
		if check != nil {
			filtered[name] = check
		}
	}
	return &HealthHandler{checks: filtered}
}

// HealthResponse reports per dependency state.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Message string            `json:"message,omitempty"`
}

// Health godoc
// @Summary Liveness and dependency health
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(h.checks))
		allOK   = true
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, check := range h.checks {
		g.Go(func() error {
			state := "ok"
			if err := check(gctx); err != nil {
				state = "down: " + err.Error()
			}
			mu.Lock()
			results[name] = state
			if state != "ok" {
				allOK = false
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if !allOK {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:  "unhealthy",
			Checks:  results,
			Message: "one or more checks failed",
		})
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Checks: results})
}
