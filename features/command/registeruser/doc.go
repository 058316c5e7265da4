// Package registeruser implements the Register User use case.
//
// The store assigns the id. Email uniqueness is enforced by the store's unique
// constraint, a duplicate fails with rental.ErrEmailAlreadyExists.
package registeruser
