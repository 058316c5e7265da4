package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-rental-go/features/command/rentbook"
	"github.com/AntonStoeckl/library-rental-go/features/command/returnbook"
)

const (
	msgRented   = "rented"
	msgReturned = "returned"
)

func (s *Server) rentBook(c echo.Context) error {
	var req rentalRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}

	command, err := rentbook.BuildCommand(req.UserID, req.BookID)
	if err != nil {
		return s.respondError(c, err)
	}

	if _, err = s.commands.RentBook.Handle(c.Request().Context(), command); err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusCreated, messageResponse{Message: msgRented})
}

func (s *Server) returnBook(c echo.Context) error {
	var req rentalRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}

	command, err := returnbook.BuildCommand(req.UserID, req.BookID)
	if err != nil {
		return s.respondError(c, err)
	}

	if _, err = s.commands.ReturnBook.Handle(c.Request().Context(), command); err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: msgReturned})
}
