// Package users provides the read-only user lookups and the books a user currently has.
//
// All calls run with eventual consistency, so a configured read replica may serve them.
package users
