package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-rental-go/rental"
)

// retryAfterSeconds is sent with 503 responses caused by a lock timeout.
const retryAfterSeconds = 1

const msgInternalError = "internal error"

// statusFor maps a handler error to an HTTP status code.
// ErrBookNotAvailable matches ErrBookNotFound and so becomes a 404.
func statusFor(err error) int {
	switch {
	case errors.Is(err, rental.ErrValidation):
		return http.StatusBadRequest
	case rental.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, rental.ErrBookAlreadyBorrowed),
		errors.Is(err, rental.ErrBookNotBorrowed),
		errors.Is(err, rental.ErrEmailAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, rental.ErrLockTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON message. Internal errors are logged, not exposed.
func (s *Server) respondError(c echo.Context, err error) error {
	status := statusFor(err)

	if status == http.StatusServiceUnavailable {
		c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds))
	}

	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.ErrorContext(c.Request().Context(), logMsgRequestFailed,
			logAttrPath, c.Path(),
			logAttrError, err.Error(),
		)

		return c.JSON(status, messageResponse{Message: msgInternalError})
	}

	return c.JSON(status, messageResponse{Message: err.Error()})
}

// badRequest answers malformed input that never reached a handler.
func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
}
