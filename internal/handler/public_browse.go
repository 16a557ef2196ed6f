package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/libroom/reserve/internal/booking"
)

// PublicHandler serves the unauthenticated browse endpoints: the room
// catalogue with optional availability annotation, the equipment
// catalogue and the slot grid. These routes sit behind the response
// cache and rate limiter.
type PublicHandler struct {
	Svc *booking.Service
}

func NewPublicHandler(svc *booking.Service) *PublicHandler {
	if svc == nil {
		panic("nil service passed to NewPublicHandler")
	}
	return &PublicHandler{Svc: svc}
}

// ListRooms returns AVAILABLE rooms. When date, from and to query
// parameters are all present, each room is annotated with whether it is
// free for that slot range.
func (h *PublicHandler) ListRooms(c echo.Context) error {
	date := c.QueryParam("date")
	fromStr := c.QueryParam("from")
	toStr := c.QueryParam("to")
	withRange := date != "" || fromStr != "" || toStr != ""

	var from, to int
	if withRange {
		if date == "" || fromStr == "" || toStr == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date, from and to must be given together"})
		}
		var err error
		if from, err = strconv.Atoi(fromStr); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from slot"})
		}
		if to, err = strconv.Atoi(toStr); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to slot"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Svc.ListAvailableRooms(ctx, date, from, to, withRange)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}

// ListEquipment returns the equipment catalogue with flat prices.
func (h *PublicHandler) ListEquipment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Svc.ListEquipment(ctx)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"equipment": items})
}

// ListSlots returns the fixed slot grid so clients can render pickers
// without hardcoding the schedule.
func (h *PublicHandler) ListSlots(c echo.Context) error {
	type slot struct {
		Index int    `json:"index"`
		Label string `json:"label"`
	}
	out := make([]slot, len(booking.Slots))
	for i, label := range booking.Slots {
		out[i] = slot{Index: i, Label: label}
	}
	return c.JSON(http.StatusOK, echo.Map{"slots": out})
}
