package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency the health endpoint checks
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	components map[string]Pinger
}

// NewHealthChecker checks the relational store and redis of infra
func NewHealthChecker(infra Infrastructure) *HealthChecker {
	return NewHealthCheckerFor(map[string]Pinger{
		"postgres": infra.Postgres(),
		"redis":    infra.Redis(),
	})
}

// NewHealthCheckerFor checks an explicit set of components
func NewHealthCheckerFor(components map[string]Pinger) *HealthChecker {
	return &HealthChecker{components: components}
}

// check pings every component concurrently and returns the failures by name
func (h *HealthChecker) check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		failures = map[string]string{}
	)

	for name, component := range h.components {
		wg.Add(1)
		go func(name string, component Pinger) {
			defer wg.Done()
			if err := component.Ping(ctx); err != nil {
				mu.Lock()
				failures[name] = err.Error()
				mu.Unlock()
			}
		}(name, component)
	}
	wg.Wait()

	return failures
}

func (h *HealthChecker) Handler(c *gin.Context) {
	if failures := h.check(c.Request.Context()); len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "fail",
			"checks": failures,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "pass",
	})
}
