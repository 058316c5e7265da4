// Package shell holds the infrastructure shared by the command and query handlers of the library
// rental service: retry with exponential backoff, handler results, and the observability helpers
// used by the observable wrappers.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
