package triage

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/triage/classify", h.Classify)
	api.POST("/triage/early-warning", h.EarlyWarning)
	api.POST("/triage/risk-score", h.RiskScore)

	api.GET("/triage/range-configs", h.ListRangeConfigs)
	api.GET("/triage/range-configs/:id", h.GetRangeConfig)
	api.POST("/triage/range-configs", h.CreateRangeConfig)
	api.PUT("/triage/range-configs/:id", h.UpdateRangeConfig)
	api.DELETE("/triage/range-configs/:id", h.DeleteRangeConfig)
}

func (h *Handler) Classify(c echo.Context) error {
	var vs VitalSigns
	if err := c.Bind(&vs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.Classify(vs)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) EarlyWarning(c echo.Context) error {
	var vs VitalSigns
	if err := c.Bind(&vs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.svc.EarlyWarning(vs))
}

func (h *Handler) RiskScore(c echo.Context) error {
	var vs VitalSigns
	if err := c.Bind(&vs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	score, tier, err := h.svc.RiskScore(vs)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"score":     score,
		"risk_tier": tier,
	})
}

func (h *Handler) ListRangeConfigs(c echo.Context) error {
	ctx := c.Request().Context()
	if metric := c.QueryParam("metric"); metric != "" {
		items, err := h.svc.ListRangeConfigsByMetric(ctx, metric)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, items)
	}
	items, err := h.svc.ListRangeConfigs(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetRangeConfig(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cfg, err := h.svc.GetRangeConfig(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "range config not found")
	}
	return c.JSON(http.StatusOK, cfg)
}

func (h *Handler) CreateRangeConfig(c echo.Context) error {
	var cfg AgeBandConfig
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateRangeConfig(c.Request().Context(), &cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, cfg)
}

func (h *Handler) UpdateRangeConfig(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var cfg AgeBandConfig
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cfg.ID = id
	if err := h.svc.UpdateRangeConfig(c.Request().Context(), &cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, cfg)
}

func (h *Handler) DeleteRangeConfig(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteRangeConfig(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
