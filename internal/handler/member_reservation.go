package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/libroom/reserve/internal/booking"
	"github.com/libroom/reserve/internal/middleware"
	"github.com/libroom/reserve/internal/model"
)

// MemberHandler serves the authenticated member endpoints: creating,
// revising, paying and cancelling reservations plus the history views.
type MemberHandler struct {
	Svc *booking.Service
}

func NewMemberHandler(svc *booking.Service) *MemberHandler {
	if svc == nil {
		panic("nil service passed to NewMemberHandler")
	}
	return &MemberHandler{Svc: svc}
}

// ----- DTOs -----

type createReservationReq struct {
	RoomID       uint64   `json:"room_id"`
	Date         string   `json:"date"` // YYYY-MM-DD
	StartSlot    int      `json:"start_slot"`
	EndSlot      int      `json:"end_slot"`
	Headcount    int      `json:"headcount"`
	EquipmentIDs []uint64 `json:"equipment_ids"`
}

type modifyReservationReq struct {
	RoomID    *uint64 `json:"room_id"`
	Date      *string `json:"date"`
	StartSlot *int    `json:"start_slot"`
	EndSlot   *int    `json:"end_slot"`
}

type payReservationReq struct {
	Method        string `json:"method"` // SYSTEM_BALANCE | ONLINE_BANKING | CREDIT_CARD
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountHolder string `json:"account_holder"`
}

// Create books a room for the caller. On success it returns the new
// PENDING reservation together with the cost the member will pay.
func (h *MemberHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Headcount < 1 {
		req.Headcount = 1
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, quote, err := h.Svc.CreateReservation(ctx, middleware.CurrentUserID(c), booking.CreateInput{
		RoomID:       req.RoomID,
		Date:         req.Date,
		StartSlot:    req.StartSlot,
		EndSlot:      req.EndSlot,
		Headcount:    req.Headcount,
		EquipmentIDs: req.EquipmentIDs,
	})
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"reservation_id": res.ID,
		"status":         res.Status,
		"quote":          quote,
	})
}

// Modify revises the caller's reservation schedule.
func (h *MemberHandler) Modify(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req modifyReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.ModifyReservation(ctx, middleware.CurrentUserID(c), id, booking.Changes{
		RoomID:    req.RoomID,
		Date:      req.Date,
		StartSlot: req.StartSlot,
		EndSlot:   req.EndSlot,
	}); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "updated"})
}

// Pay settles the caller's reservation with the chosen method.
func (h *MemberHandler) Pay(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req payReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	pay, err := h.Svc.PayReservation(ctx, middleware.CurrentUserID(c), id, booking.PayInput{
		Method:        model.PaymentMethod(req.Method),
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountHolder: req.AccountHolder,
	})
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"transaction_id": pay.TransactionID,
		"amount":         pay.Amount,
		"method":         pay.Method,
		"status":         pay.Status,
		"paid_at":        pay.PaidAt,
	})
}

// Cancel cancels the caller's reservation and reports any refund made
// to the system balance.
func (h *MemberHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	refund, err := h.Svc.CancelReservation(ctx, middleware.CurrentUserID(c), id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "cancelled", "refunded": refund})
}

// History returns the caller's reservations, newest first.
func (h *MemberHandler) History(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Svc.UserHistory(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": items})
}

// Payments returns the caller's payment history.
func (h *MemberHandler) Payments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Svc.PaymentHistory(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": items})
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
