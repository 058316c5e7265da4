// Package returnbook implements the Return Book use case.
//
// A user gives back a book they borrowed. Inside one store transaction the handler
// reads the user, locks the book row, reads the booking, decides, and then deletes
// the booking and puts the copy back into stock. Stock has no upper bound.
package returnbook
