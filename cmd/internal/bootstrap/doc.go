// Package bootstrap assembles the command and query handlers of the rental service
// on top of a store, with observability attached where collectors are configured.
package bootstrap
