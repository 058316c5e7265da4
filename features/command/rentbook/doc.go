// Package rentbook implements the Rent Book use case.
//
// A registered user borrows one copy of a book. The handler runs the
// Query-Lock-Decide-Write cycle inside one store transaction: it reads the user,
// locks the book row, reads the booking, lets the pure Decide function apply the
// business rules, and then writes the booking and the decremented stock.
//
// The book lock is the only serialization point between concurrent renters of the
// same book. A lock wait that exceeds the store's lock timeout is retried with
// exponential backoff.
package rentbook
