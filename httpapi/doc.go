// Package httpapi exposes the rental commands and queries as a JSON API on echo.
//
// Routes live under /v1. Domain errors map to status codes: not found 404, conflicts
// (already borrowed, not borrowed, email taken) 409, validation 400, and a lock
// timeout 503 with a Retry-After header. Anything else is a 500 without details.
package httpapi
