package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/AntonStoeckl/library-rental-go/features/command/addbook"
	"github.com/AntonStoeckl/library-rental-go/features/command/registerauthor"
	"github.com/AntonStoeckl/library-rental-go/features/command/registeruser"
	"github.com/AntonStoeckl/library-rental-go/features/command/rentbook"
	"github.com/AntonStoeckl/library-rental-go/features/command/returnbook"
	"github.com/AntonStoeckl/library-rental-go/features/query/authors"
	"github.com/AntonStoeckl/library-rental-go/features/query/books"
	"github.com/AntonStoeckl/library-rental-go/features/query/users"
	"github.com/AntonStoeckl/library-rental-go/shared/shell"
)

const (
	logMsgRequest       = "http request"
	logMsgRequestFailed = "http request failed"

	logAttrMethod    = "method"
	logAttrPath      = "path"
	logAttrStatus    = "status"
	logAttrLatencyMS = "latency_ms"
	logAttrRequestID = "request_id"
	logAttrError     = "error"

	readHeaderTimeout = 5 * time.Second
)

// ErrMissingHandler is returned by NewServer when a command handler or query handler is not set.
var ErrMissingHandler = errors.New("httpapi: handler must not be nil")

// Commands holds the command handlers the API dispatches to.
// Plain handlers and their observable wrappers both satisfy shell.CoreCommandHandler.
type Commands struct {
	RentBook       shell.CoreCommandHandler[rentbook.Command]
	ReturnBook     shell.CoreCommandHandler[returnbook.Command]
	RegisterUser   shell.CoreCommandHandler[registeruser.Command]
	RegisterAuthor shell.CoreCommandHandler[registerauthor.Command]
	AddBook        shell.CoreCommandHandler[addbook.Command]
}

// Queries holds the query handlers the API reads through.
type Queries struct {
	Users   users.QueryHandler
	Authors authors.QueryHandler
	Books   books.QueryHandler
}

// Server is the HTTP boundary of the rental service.
type Server struct {
	echo     *echo.Echo
	commands Commands
	queries  Queries
	logger   *slog.Logger
}

// Option defines a functional option for configuring Server.
type Option func(*Server)

// WithLogger sets the logger for request and failure logs. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server with all routes registered.
func NewServer(commands Commands, queries Queries, opts ...Option) (*Server, error) {
	if commands.RentBook == nil ||
		commands.ReturnBook == nil ||
		commands.RegisterUser == nil ||
		commands.RegisterAuthor == nil ||
		commands.AddBook == nil {
		return nil, ErrMissingHandler
	}

	s := &Server{
		echo:     echo.New(),
		commands: commands,
		queries:  queries,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.JSONSerializer = newJSONSerializer()
	s.echo.Validator = newRequestValidator()

	s.registerMiddlewares()
	s.registerRoutes()

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start(addr string) error {
	s.echo.Server.ReadHeaderTimeout = readHeaderTimeout

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) registerMiddlewares() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.echo.Use(s.requestLogger())
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			s.logger.InfoContext(c.Request().Context(), logMsgRequest,
				logAttrMethod, c.Request().Method,
				logAttrPath, c.Path(),
				logAttrStatus, c.Response().Status,
				logAttrLatencyMS, shell.ToMilliseconds(time.Since(start)),
				logAttrRequestID, c.Response().Header().Get(echo.HeaderXRequestID),
			)

			return nil
		}
	}
}

func (s *Server) registerRoutes() {
	v1 := s.echo.Group("/v1")

	v1.GET("/users", s.listUsers)
	v1.POST("/users", s.registerUser)
	v1.GET("/users/:id", s.findUserByID)
	v1.GET("/users/:id/books", s.booksOfUser)
	v1.GET("/users/by-name/:name", s.findUserByName)
	v1.GET("/users/by-email/:email", s.findUserByEmail)

	v1.GET("/authors", s.listAuthors)
	v1.POST("/authors", s.registerAuthor)
	v1.GET("/authors/:id", s.findAuthorByID)
	v1.GET("/authors/:id/books", s.booksOfAuthor)
	v1.GET("/authors/by-name/:name", s.findAuthorByName)

	v1.GET("/books", s.listBooks)
	v1.POST("/books", s.addBook)
	v1.GET("/books/:id", s.findBookByID)
	v1.GET("/books/by-title/:title", s.findBookByTitle)

	v1.POST("/rentals", s.rentBook)
	v1.POST("/rentals/return", s.returnBook)
}
