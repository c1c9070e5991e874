package api

import (
	"errors"

	"BizPulse/internal/domain/models"
	"BizPulse/internal/usecase"
	pkghttp "BizPulse/pkg/http"
	applogger "BizPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// InsightsEchoHandler exposes the per-domain health reports, the action plan
// and the memory (insight log and preferences).
type InsightsEchoHandler struct {
	health *usecase.DomainHealth
	logger *applogger.Logger
}

func NewInsightsEchoHandler(health *usecase.DomainHealth, logger *applogger.Logger) *InsightsEchoHandler {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &InsightsEchoHandler{health: health, logger: logger}
}

func (h *InsightsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/insights", h.Recent)
	g.GET("/insights/actions", h.Actions)
	g.GET("/insights/:domain", h.Domain)
	g.GET("/preferences", h.Preferences)
	g.PUT("/preferences", h.SetPreference)
}

func (h *InsightsEchoHandler) Domain(c echo.Context) error {
	req := &models.DomainInsightRequest{}
	if verr := pkghttp.ReadAndValidateRequest(c, req); verr != nil {
		return pkghttp.BadRequestResponse(c, verr)
	}
	domain, err := models.ParseDomain(req.Domain)
	if err != nil {
		return pkghttp.AppErrorResponse(c, unknownDomain(req.Domain, err))
	}

	insight, err := h.health.Insight(c.Request().Context(), domain)
	if err != nil {
		return h.fail(c, "domain insight", err)
	}
	return pkghttp.SuccessResponse(c, insight)
}

func (h *InsightsEchoHandler) Actions(c echo.Context) error {
	plan, err := h.health.ActionPlan(c.Request().Context())
	if err != nil {
		return h.fail(c, "action plan", err)
	}
	return pkghttp.SuccessResponse(c, plan)
}

func (h *InsightsEchoHandler) Recent(c echo.Context) error {
	req := &models.RecentInsightsRequest{}
	if verr := pkghttp.ReadAndValidateRequest(c, req); verr != nil {
		return pkghttp.BadRequestResponse(c, verr)
	}
	entries, err := h.health.RecentInsights(c.Request().Context(), req.Limit)
	if err != nil {
		return h.fail(c, "recent insights", err)
	}
	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"insights": nonNil(entries),
		"count":    len(entries),
	})
}

func (h *InsightsEchoHandler) Preferences(c echo.Context) error {
	prefs, err := h.health.Preferences(c.Request().Context())
	if err != nil {
		return h.fail(c, "load preferences", err)
	}
	return pkghttp.SuccessResponse(c, prefs)
}

func (h *InsightsEchoHandler) SetPreference(c echo.Context) error {
	req := &models.SetPreferenceRequest{}
	if verr := pkghttp.ReadAndValidateRequest(c, req); verr != nil {
		return pkghttp.BadRequestResponse(c, verr)
	}
	prefs, err := h.health.SetPreference(c.Request().Context(), req.Key, req.Value)
	if err != nil {
		return h.fail(c, "set preference", err)
	}
	return pkghttp.SuccessResponse(c, prefs)
}

func (h *InsightsEchoHandler) fail(c echo.Context, op string, err error) error {
	if errors.Is(err, models.ErrUnknownDomain) {
		return pkghttp.AppErrorResponse(c, unknownDomain(c.Param("domain"), err))
	}
	h.logger.Error(op+" failed", applogger.String("path", c.Path()), applogger.Error(err))
	return pkghttp.AppErrorResponse(c, err)
}

func unknownDomain(domain string, err error) *pkghttp.AppError {
	return pkghttp.NotFoundErrorf("unknown domain %q", domain).
		WithCode(pkghttp.CodeUnknownDomain).
		WithParam("domain", domain).
		WithError(err)
}
