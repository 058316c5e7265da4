// Package adapters provide database adapter implementations for the PostgreSQL rental store.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, including transactions, so the store works with any
// supported connection type.
//
// Reads outside a transaction go to the replica when one is configured and the context
// carries rental.EventualConsistency. Transactions always run on the primary.
package adapters
