// Package memoryengine provides an in-memory implementation of the rental store.
//
// It mirrors the PostgreSQL engine's contract: FindAndLockBook takes an exclusive
// per-book lock that is held until the transaction ends, waiting longer than the
// lock timeout fails with rental.ErrLockTimeout, and a transaction's writes become
// visible together on commit or not at all.
//
// It is used for unit tests of the command and query handlers and for running the
// service without a database.
package memoryengine
