package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-rental-go/features/command/registerauthor"
	"github.com/AntonStoeckl/library-rental-go/rental"
)

func (s *Server) listAuthors(c echo.Context) error {
	result, err := s.queries.Authors.ListAll(c.Request().Context())
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusOK, toAuthorResponses(result))
}

func (s *Server) registerAuthor(c echo.Context) error {
	var req registerAuthorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}

	// the validate tag guarantees the layout
	birthdate, _ := time.Parse(dateLayout, req.Birthdate)

	command, err := registerauthor.BuildCommand(req.Name, birthdate)
	if err != nil {
		return s.respondError(c, err)
	}

	result, err := s.commands.RegisterAuthor.Handle(c.Request().Context(), command)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusCreated, createdResponse{ID: result.AssignedID})
}

func (s *Server) findAuthorByID(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, err)
	}

	author, found, err := s.queries.Authors.FindByID(c.Request().Context(), id)

	return respondLookup(s, c, author, found, err, rental.ErrAuthorNotFound, toAuthorResponse)
}

func (s *Server) findAuthorByName(c echo.Context) error {
	author, found, err := s.queries.Authors.FindByName(c.Request().Context(), c.Param("name"))

	return respondLookup(s, c, author, found, err, rental.ErrAuthorNotFound, toAuthorResponse)
}

func (s *Server) booksOfAuthor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, err)
	}

	result, err := s.queries.Authors.BooksOfAuthor(c.Request().Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusOK, toBookResponses(result))
}
