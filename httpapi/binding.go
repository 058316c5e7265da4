package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

var errInvalidID = errors.New("id must be a positive integer")

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return fmt.Errorf("%v", httpErr.Message)
		}

		return err
	}

	return c.Validate(req)
}

func pathID(c echo.Context) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).Int64("id", &id).BindError(); err != nil || id < 1 {
		return 0, errInvalidID
	}

	return id, nil
}

// respondLookup answers a found value with 200 and a miss with notFound as 404.
func respondLookup[T any, R any](
	s *Server,
	c echo.Context,
	value T,
	found bool,
	err error,
	notFound error,
	toResponse func(T) R,
) error {
	if err != nil {
		return s.respondError(c, err)
	}

	if !found {
		return s.respondError(c, notFound)
	}

	return c.JSON(http.StatusOK, toResponse(value))
}
