// Package observable decorates command and query handlers with metrics, tracing and logging.
//
// CommandWrapper wraps any shell.CoreCommandHandler. Query handlers run each call through
// ObserveQuery with a shared QueryObserver. Both classify outcomes the same way: success,
// rejected (a business rule said no), lock_timeout, canceled, timeout, or error.
package observable
