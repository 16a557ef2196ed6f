package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/libroom/reserve/internal/booking"
)

// bookingError translates booking sentinels into JSON error responses.
// Unknown errors become a generic 500 so internals never leak.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrInvalidDate),
		errors.Is(err, booking.ErrInvalidTimeRange),
		errors.Is(err, booking.ErrInvalidAmount),
		errors.Is(err, booking.ErrUnknownMethod):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrRoomNotFound),
		errors.Is(err, booking.ErrReservationNotFound),
		errors.Is(err, booking.ErrUnknownEquipment):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrRoomUnavailable),
		errors.Is(err, booking.ErrQuotaExceeded),
		errors.Is(err, booking.ErrAlreadyPaid),
		errors.Is(err, booking.ErrAlreadyCancelled),
		errors.Is(err, booking.ErrIntegrity):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrInsufficientBalance),
		errors.Is(err, booking.ErrInsufficientExternalFunds):
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
