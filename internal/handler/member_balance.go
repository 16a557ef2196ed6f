package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/libroom/reserve/internal/middleware"
)

type topUpReq struct {
	Amount   int64  `json:"amount"`
	BankName string `json:"bank_name"`
}

// Balance returns the caller's system and bank ledgers.
func (h *MemberHandler) Balance(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bal, err := h.Svc.Balance(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"system_credits": bal.SystemCredits,
		"bank_credits":   bal.BankCredits,
	})
}

// TopUp moves credits from the caller's bank balance into the system
// balance.
func (h *MemberHandler) TopUp(c echo.Context) error {
	var req topUpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bal, err := h.Svc.TopUp(ctx, middleware.CurrentUserID(c), req.Amount, strings.TrimSpace(req.BankName))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"system_credits": bal.SystemCredits,
		"bank_credits":   bal.BankCredits,
	})
}

// TopUps returns the caller's top-up history.
func (h *MemberHandler) TopUps(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Svc.TopUpHistory(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"topups": items})
}
