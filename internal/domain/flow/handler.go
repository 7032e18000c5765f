package flow

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ajabadia/TRYaG-sub000/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/flows", h.OpenFlow)
	api.POST("/flows/:patient_id/move", h.Move)
	api.POST("/flows/:patient_id/close", h.CloseFlow)
	api.GET("/flows/:patient_id/active", h.GetActive)
	api.GET("/flows/:patient_id/stays", h.ListStays)
	api.GET("/flow-audit", h.Audit)

	api.GET("/rooms", h.ListRooms)
	api.GET("/rooms/:code", h.GetRoom)
	api.POST("/rooms", h.CreateRoom)
	api.PUT("/rooms/:code", h.UpdateRoom)
	api.POST("/rooms/:code/adjust", h.AdjustCapacity)
}

type openFlowRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	Location  Location  `json:"location"`
	State     string    `json:"state"`
	// Recover force-closes a stale active stay instead of failing.
	Recover bool   `json:"recover"`
	Reason  string `json:"reason"`
}

func (h *Handler) OpenFlow(c echo.Context) error {
	var req openFlowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	var stay *Stay
	var err error
	if req.Recover {
		stay, err = h.svc.RecoverOpenFlow(ctx, req.PatientID, req.Location, req.State, req.Reason)
	} else {
		stay, err = h.svc.OpenFlow(ctx, req.PatientID, req.Location, req.State)
	}
	if errors.Is(err, ErrActiveStayExists) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, stay)
}

type moveRequest struct {
	Location Location `json:"location"`
	State    string   `json:"state"`
}

func (h *Handler) Move(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	stay, err := h.svc.Move(c.Request().Context(), patientID, req.Location, req.State)
	if errors.Is(err, ErrNoActiveStay) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, stay)
}

type closeFlowRequest struct {
	State string `json:"state"`
}

func (h *Handler) CloseFlow(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	var req closeFlowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	stay, err := h.svc.CloseFlow(c.Request().Context(), patientID, req.State)
	if errors.Is(err, ErrNoActiveStay) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, stay)
}

func (h *Handler) GetActive(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	stay, err := h.svc.GetActive(c.Request().Context(), patientID)
	if errors.Is(err, ErrNoActiveStay) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stay)
}

func (h *Handler) ListStays(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListStaysByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Audit(c echo.Context) error {
	findings, err := h.svc.Audit(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, findings)
}

// -- Rooms --

func (h *Handler) ListRooms(c echo.Context) error {
	rooms, err := h.svc.ListRooms(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rooms)
}

func (h *Handler) GetRoom(c echo.Context) error {
	room, err := h.svc.GetRoom(c.Request().Context(), c.Param("code"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "room not found")
	}
	return c.JSON(http.StatusOK, room)
}

type createRoomRequest struct {
	Code       string  `json:"code"`
	Type       string  `json:"type"`
	Subtype    *string `json:"subtype,omitempty"`
	TotalSlots int     `json:"total_slots"`
	// AvailableSlots omitted means all slots free; an explicit value is
	// kept as-is, zero included.
	AvailableSlots *int `json:"available_slots,omitempty"`
	Active         bool `json:"active"`
}

func (h *Handler) CreateRoom(c echo.Context) error {
	var req createRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	room := Room{
		Code:       req.Code,
		Type:       req.Type,
		Subtype:    req.Subtype,
		TotalSlots: req.TotalSlots,
		Active:     req.Active,
	}
	if err := h.svc.CreateRoom(c.Request().Context(), &room, req.AvailableSlots); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, room)
}

func (h *Handler) UpdateRoom(c echo.Context) error {
	var room Room
	if err := c.Bind(&room); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	room.Code = c.Param("code")
	if err := h.svc.UpdateRoom(c.Request().Context(), &room); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, room)
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) AdjustCapacity(c echo.Context) error {
	var req adjustRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AdjustCapacity(c.Request().Context(), c.Param("code"), req.Delta); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
