package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/libroom/reserve/internal/booking"
	"github.com/libroom/reserve/internal/model"
	"github.com/libroom/reserve/internal/repository"
)

// AdminHandler serves the librarian endpoints: room administration,
// booking rules, member credits, the dashboard and the audit views.
type AdminHandler struct {
	Svc   *booking.Service
	Users *repository.UserRepo
	Rooms *repository.RoomRepo
}

func NewAdminHandler(svc *booking.Service, users *repository.UserRepo, rooms *repository.RoomRepo) *AdminHandler {
	if svc == nil || users == nil || rooms == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Svc: svc, Users: users, Rooms: rooms}
}

// ----- DTOs -----

type addRoomReq struct {
	Name         string `json:"name"`
	Capacity     int    `json:"capacity"`
	PricePerHour int64  `json:"price_per_hour"`
}

type capacityReq struct {
	Capacity int `json:"capacity"`
}

type roomStatusReq struct {
	Status string `json:"status"` // AVAILABLE | MAINTENANCE
}

// ListRooms returns every room regardless of status.
func (h *AdminHandler) ListRooms(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}

// AddRoom creates a new room.
func (h *AdminHandler) AddRoom(c echo.Context) error {
	var req addRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Svc.AddRoom(ctx, req.Name, req.Capacity, req.PricePerHour)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// UpdateCapacity changes a room's capacity.
func (h *AdminHandler) UpdateCapacity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req capacityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.UpdateRoomCapacity(ctx, id, req.Capacity); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "updated"})
}

// SetStatus flips a room between AVAILABLE and MAINTENANCE.
func (h *AdminHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req roomStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := model.RoomStatus(strings.ToUpper(strings.TrimSpace(req.Status)))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.SetRoomStatus(ctx, id, status); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "updated"})
}

// DeleteRoom removes a room and its reservations.
func (h *AdminHandler) DeleteRoom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Svc.DeleteRoom(ctx, id); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
