// Package rental provides the core types of the library rental system.
//
// This package defines the entities that the rest of the module works with,
// their validating factories, the error taxonomy, and the persistence contract
// that the rent and return transactions run against.
//
// Entities:
//   - User: a registered borrower, identified by id, with a unique email
//   - Author: a book author with a birthdate that is never in the future
//   - Book: a title with an aggregate count of available copies
//   - Booking: the fact that a user currently holds one copy of a book
//
// Every entity is obtained through a Build function, so an invalid instance
// can never exist:
//
//	user, err := rental.BuildUser(1, "Ada Lovelace", "ada@example.com")
//	if errors.Is(err, rental.ErrValidation) {
//		// reject input
//	}
//
// Book.Rent and Book.Return are the only mutations in the model. Callers invoke
// them only while holding the exclusive lock obtained from Tx.FindAndLockBook.
package rental
