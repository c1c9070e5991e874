package api

import (
	"time"

	"BizPulse/internal/usecase"
	pkghttp "BizPulse/pkg/http"
	applogger "BizPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	ServiceName    = "BizPulse Monitoring & Risk Engine"
	ServiceVersion = "1.0.0"
)

// MonitoringEchoHandler serves the live snapshot in its REST and websocket forms.
type MonitoringEchoHandler struct {
	manager *usecase.RiskManager
	stream  *SnapshotStream
	logger  *applogger.Logger
}

func NewMonitoringEchoHandler(manager *usecase.RiskManager, streamInterval time.Duration, logger *applogger.Logger) *MonitoringEchoHandler {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &MonitoringEchoHandler{
		manager: manager,
		stream:  NewSnapshotStream(manager, streamInterval, logger),
		logger:  logger,
	}
}

func (h *MonitoringEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/monitoring/overview", h.Overview)
	e.GET("/ws/monitoring", h.stream.Serve)

	g := e.Group("/api")
	g.GET("/monitoring", h.Snapshot)
	g.GET("/metrics/aov", h.AverageOrderValue)
	g.GET("/health", h.Health)
}

func (h *MonitoringEchoHandler) Overview(c echo.Context) error {
	return pkghttp.SuccessResponse(c, h.manager.Overview(c.Request().Context()))
}

func (h *MonitoringEchoHandler) Snapshot(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return pkghttp.SuccessResponse(c, h.manager.Snapshot(c.Request().Context()))
}

func (h *MonitoringEchoHandler) AverageOrderValue(c echo.Context) error {
	aov := h.manager.AverageOrderValue(c.Request().Context())
	return pkghttp.SuccessResponse(c, map[string]float64{"average_order_value": aov})
}

func (h *MonitoringEchoHandler) Health(c echo.Context) error {
	return pkghttp.SuccessResponse(c, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
		"version": ServiceVersion,
	})
}
