package http

import (
	"errors"
	"net/http"

	"tripplanner/internal/core/application/usecases/commands"
	"tripplanner/internal/generated/servers"
	"tripplanner/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

func writeError(ctx echo.Context, status int, message string) error {
	return ctx.JSON(status, servers.Error{
		Code:    int32(status), //nolint:gosec //http status codes fit
		Message: message,
	})
}

// writeDomainError maps err onto a status code. Client errors carry the cause;
// server errors only the generic message.
func writeDomainError(ctx echo.Context, err error, message string) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		ctx.Logger().Errorf("%s: %v", message, err)
		return writeError(ctx, status, message)
	}
	return writeError(ctx, status, message+": "+err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrVersionIsInvalid):
		return http.StatusConflict
	case errors.Is(err, commands.ErrNoPendingOrders), errors.Is(err, errs.ErrInfeasibleInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
