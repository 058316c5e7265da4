// Package authors provides the read-only author lookups and the books of an author.
package authors
