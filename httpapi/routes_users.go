package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-rental-go/features/command/registeruser"
	"github.com/AntonStoeckl/library-rental-go/rental"
)

func (s *Server) listUsers(c echo.Context) error {
	result, err := s.queries.Users.ListAll(c.Request().Context())
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusOK, toUserResponses(result))
}

func (s *Server) registerUser(c echo.Context) error {
	var req registerUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}

	command, err := registeruser.BuildCommand(req.Name, req.Email)
	if err != nil {
		return s.respondError(c, err)
	}

	result, err := s.commands.RegisterUser.Handle(c.Request().Context(), command)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusCreated, createdResponse{ID: result.AssignedID})
}

func (s *Server) findUserByID(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, err)
	}

	user, found, err := s.queries.Users.FindByID(c.Request().Context(), id)

	return respondLookup(s, c, user, found, err, rental.ErrUserNotFound, toUserResponse)
}

func (s *Server) findUserByName(c echo.Context) error {
	user, found, err := s.queries.Users.FindByName(c.Request().Context(), c.Param("name"))

	return respondLookup(s, c, user, found, err, rental.ErrUserNotFound, toUserResponse)
}

func (s *Server) findUserByEmail(c echo.Context) error {
	user, found, err := s.queries.Users.FindByEmail(c.Request().Context(), c.Param("email"))

	return respondLookup(s, c, user, found, err, rental.ErrUserNotFound, toUserResponse)
}

func (s *Server) booksOfUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, err)
	}

	result, err := s.queries.Users.BooksOfUser(c.Request().Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusOK, toBookResponses(result))
}
