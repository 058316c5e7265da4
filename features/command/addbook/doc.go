// Package addbook implements the Add Book use case.
//
// A book references an existing author. The store's foreign key rejects an unknown
// author with rental.ErrAuthorNotFound.
package addbook
