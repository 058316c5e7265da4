// Package books provides the read-only catalog queries: listing, lookups by id and title,
// and filters by publication year, author name and availability.
//
// A book is available when at least one copy can be rented.
package books
