package httpapi

import (
	"github.com/AntonStoeckl/library-rental-go/rental"
)

const dateLayout = "2006-01-02"

type registerUserRequest struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required"`
}

type registerAuthorRequest struct {
	Name      string `json:"name"      validate:"required"`
	Birthdate string `json:"birthdate" validate:"required,datetime=2006-01-02"`
}

type addBookRequest struct {
	Title           string `json:"title"            validate:"required"`
	PublicationYear int    `json:"publication_year" validate:"required,gt=0"`
	AuthorID        int64  `json:"author_id"        validate:"required,gt=0"`
	AvailableCopies int    `json:"available_copies" validate:"gte=0"`
}

type rentalRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
	BookID int64 `json:"book_id" validate:"required,gt=0"`
}

type createdResponse struct {
	ID int64 `json:"id"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type authorResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Birthdate string `json:"birthdate"`
}

type bookResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	PublicationYear int    `json:"publication_year"`
	AuthorID        int64  `json:"author_id"`
	AvailableCopies int    `json:"available_copies"`
}

func toUserResponse(u rental.User) userResponse {
	return userResponse{ID: u.ID(), Name: u.Name(), Email: u.Email()}
}

func toUserResponses(users rental.Users) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}

	return out
}

func toAuthorResponse(a rental.Author) authorResponse {
	return authorResponse{ID: a.ID(), Name: a.Name(), Birthdate: a.Birthdate().Format(dateLayout)}
}

func toAuthorResponses(authors rental.Authors) []authorResponse {
	out := make([]authorResponse, 0, len(authors))
	for _, a := range authors {
		out = append(out, toAuthorResponse(a))
	}

	return out
}

func toBookResponse(b rental.Book) bookResponse {
	return bookResponse{
		ID:              b.ID(),
		Title:           b.Title(),
		PublicationYear: b.PublicationYear(),
		AuthorID:        b.AuthorID(),
		AvailableCopies: b.AvailableCopies(),
	}
}

func toBookResponses(books rental.Books) []bookResponse {
	out := make([]bookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, toBookResponse(b))
	}

	return out
}
