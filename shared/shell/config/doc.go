// Package config provides the runtime configuration of the library rental service.
//
// Load reads an optional .env file and then the process environment. The remaining
// functions turn a Config into database connections for the supported drivers
// (pgx.Pool, sql.DB, sqlx.DB), a ready postgresengine.Store, and the OpenTelemetry
// providers used by the oteladapters.
//
// This package is part of the shell (infrastructure) layer.
package config
