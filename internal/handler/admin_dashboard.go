package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type ruleReq struct {
	MaxActive int `json:"max_active"`
}

type creditReq struct {
	StudentID string `json:"student_id"`
	Amount    int64  `json:"amount"`
}

// Dashboard returns the aggregated librarian dashboard: room counts,
// reservation counts by status, revenue and the most recent bookings.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	stats, err := h.Svc.DashboardStats(ctx)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// GetRule returns the current booking quota.
func (h *AdminHandler) GetRule(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rule, err := h.Svc.BookingRule(ctx)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"max_active": rule.MaxActive})
}

// SetRule updates the booking quota applied to new reservations.
// Existing reservations above a lowered ceiling are untouched.
func (h *AdminHandler) SetRule(c echo.Context) error {
	var req ruleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.SetBookingRule(ctx, req.MaxActive); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"max_active": req.MaxActive})
}

// Credit grants system credits to a member looked up by student ID.
func (h *AdminHandler) Credit(c echo.Context) error {
	var req creditReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.StudentID = strings.TrimSpace(req.StudentID)
	if req.StudentID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "student_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByStudentID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Svc.CreditMember(ctx, u.ID, req.Amount); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "credited", "user_id": u.ID, "amount": req.Amount})
}

// Reservations returns every reservation with member and room context.
func (h *AdminHandler) Reservations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	items, err := h.Svc.AllReservations(ctx)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": items})
}

// Payments returns every payment record.
func (h *AdminHandler) Payments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	items, err := h.Svc.AllPayments(ctx)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": items})
}

// RoomActions returns the room audit trail.
func (h *AdminHandler) RoomActions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Svc.RoomActions(ctx)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"room_actions": items})
}

// UserActions returns the account audit trail.
func (h *AdminHandler) UserActions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Svc.UserActions(ctx)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user_actions": items})
}
