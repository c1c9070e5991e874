package api

import (
	"fmt"

	"BizPulse/internal/domain/models"
	"BizPulse/internal/service/ratelimit"
	"BizPulse/internal/usecase"
	pkghttp "BizPulse/pkg/http"
	applogger "BizPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

type RisksEchoHandler struct {
	manager *usecase.RiskManager
	limiter *ratelimit.Limiter
	logger  *applogger.Logger
}

// NewRisksEchoHandler wires the risk routes. A nil limiter disables rate limiting on POST routes.
func NewRisksEchoHandler(manager *usecase.RiskManager, limiter *ratelimit.Limiter, logger *applogger.Logger) *RisksEchoHandler {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &RisksEchoHandler{manager: manager, limiter: limiter, logger: logger}
}

func (h *RisksEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/risks", h.Board)

	var mw []echo.MiddlewareFunc
	if h.limiter != nil {
		mw = append(mw, h.limiter.Middleware())
	}

	g := e.Group("/api/risks")
	g.GET("/active", h.Active)
	g.GET("/historical", h.Historical)
	g.GET("/all", h.All)
	g.POST("/generate", h.Generate, mw...)
	g.POST("/resolve/:risk_id", h.Resolve, mw...)
	g.POST("/auto-resolve", h.AutoResolve, mw...)
}

// Board returns active and historical risks side by side.
func (h *RisksEchoHandler) Board(c echo.Context) error {
	ctx := c.Request().Context()
	active, err := h.manager.ActiveRisks(ctx)
	if err != nil {
		return h.fail(c, "list active risks", err)
	}
	historical, err := h.manager.HistoricalRisks(ctx)
	if err != nil {
		return h.fail(c, "list historical risks", err)
	}
	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"active_risks":     nonNil(active),
		"historical_risks": nonNil(historical),
	})
}

func (h *RisksEchoHandler) Active(c echo.Context) error {
	risks, err := h.manager.ActiveRisks(c.Request().Context())
	if err != nil {
		return h.fail(c, "list active risks", err)
	}
	return riskList(c, risks)
}

func (h *RisksEchoHandler) Historical(c echo.Context) error {
	risks, err := h.manager.HistoricalRisks(c.Request().Context())
	if err != nil {
		return h.fail(c, "list historical risks", err)
	}
	return riskList(c, risks)
}

func (h *RisksEchoHandler) All(c echo.Context) error {
	risks, err := h.manager.AllRisks(c.Request().Context())
	if err != nil {
		return h.fail(c, "list risks", err)
	}
	return riskList(c, risks)
}

func (h *RisksEchoHandler) Generate(c echo.Context) error {
	risks, err := h.manager.GenerateAndStore(c.Request().Context())
	if err != nil {
		return h.fail(c, "generate risks", err)
	}
	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"message": fmt.Sprintf("Generated %d new risks", len(risks)),
		"risks":   nonNil(risks),
	})
}

func (h *RisksEchoHandler) Resolve(c echo.Context) error {
	req := &models.ResolveRiskRequest{}
	if verr := pkghttp.ReadAndValidateRequest(c, req); verr != nil {
		return pkghttp.BadRequestResponse(c, verr)
	}

	resolved, err := h.manager.Resolve(c.Request().Context(), req.RiskID, req.Reason)
	if err != nil {
		return h.fail(c, "resolve risk", err)
	}
	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"message":  fmt.Sprintf("Risk %s resolved", req.RiskID),
		"resolved": nonNil(resolved),
	})
}

func (h *RisksEchoHandler) AutoResolve(c echo.Context) error {
	req := &models.AutoResolveRequest{}
	if verr := pkghttp.ReadAndValidateRequest(c, req); verr != nil {
		return pkghttp.BadRequestResponse(c, verr)
	}

	resolved, err := h.manager.AutoResolveStale(c.Request().Context(), *req.MaxAgeHours)
	if err != nil {
		return h.fail(c, "auto-resolve risks", err)
	}
	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"message":  "Stale risks auto-resolved",
		"resolved": nonNil(resolved),
	})
}

func (h *RisksEchoHandler) fail(c echo.Context, op string, err error) error {
	h.logger.Error(op+" failed", applogger.String("path", c.Path()), applogger.Error(err))
	return pkghttp.AppErrorResponse(c, err)
}

func riskList(c echo.Context, risks []models.Risk) error {
	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"risks": nonNil(risks),
		"count": len(risks),
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
