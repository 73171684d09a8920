package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rippin918/hummingbot-daily-auto/internal/cache"
)

var startTime = time.Now()

// HealthHandler reports process and dependency health.
type HealthHandler struct {
	signals *cache.SignalCache
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
}

// NewHealthHandler creates a health handler. The signal cache is optional.
func NewHealthHandler(signals *cache.SignalCache) *HealthHandler {
	return &HealthHandler{signals: signals}
}

// Health returns 200 when all wired dependencies respond, 503 otherwise.
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Services:  map[string]string{},
		Uptime:    time.Since(startTime).Round(time.Second).String(),
	}

	if h.signals != nil {
		response.Services["redis"] = "ok"
		if err := h.signals.Ping(c.Request.Context()); err != nil {
			response.Services["redis"] = "error"
			response.Status = "degraded"
		}
	}

	code := http.StatusOK
	if response.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, response)
}
