package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-rental-go/features/command/addbook"
	"github.com/AntonStoeckl/library-rental-go/rental"
)

const (
	queryParamYear      = "year"
	queryParamAuthor    = "author"
	queryParamAvailable = "available"
)

var errConflictingFilters = errors.New("use at most one of the filters year, author and available")

// listBooks serves the whole catalog or, with one filter query parameter, a filtered part of it.
func (s *Server) listBooks(c echo.Context) error {
	ctx := c.Request().Context()

	var year int
	var available bool
	if err := echo.QueryParamsBinder(c).
		Int(queryParamYear, &year).
		Bool(queryParamAvailable, &available).
		BindError(); err != nil {
		return badRequest(c, err)
	}

	filters := 0
	for _, name := range []string{queryParamYear, queryParamAuthor, queryParamAvailable} {
		if c.QueryParam(name) != "" {
			filters++
		}
	}

	if filters > 1 {
		return badRequest(c, errConflictingFilters)
	}

	var result rental.Books
	var err error

	switch {
	case c.QueryParam(queryParamYear) != "":
		result, err = s.queries.Books.ByYear(ctx, year)
	case c.QueryParam(queryParamAuthor) != "":
		result, err = s.queries.Books.ByAuthorName(ctx, c.QueryParam(queryParamAuthor))
	case c.QueryParam(queryParamAvailable) != "":
		result, err = s.queries.Books.ByAvailability(ctx, available)
	default:
		result, err = s.queries.Books.ListAll(ctx)
	}

	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusOK, toBookResponses(result))
}

func (s *Server) addBook(c echo.Context) error {
	var req addBookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}

	command, err := addbook.BuildCommand(req.Title, req.PublicationYear, req.AuthorID, req.AvailableCopies)
	if err != nil {
		return s.respondError(c, err)
	}

	result, err := s.commands.AddBook.Handle(c.Request().Context(), command)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusCreated, createdResponse{ID: result.AssignedID})
}

func (s *Server) findBookByID(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, err)
	}

	book, found, err := s.queries.Books.FindByID(c.Request().Context(), id)

	return respondLookup(s, c, book, found, err, rental.ErrBookNotFound, toBookResponse)
}

func (s *Server) findBookByTitle(c echo.Context) error {
	book, found, err := s.queries.Books.FindByTitle(c.Request().Context(), c.Param("title"))

	return respondLookup(s, c, book, found, err, rental.ErrBookNotFound, toBookResponse)
}
