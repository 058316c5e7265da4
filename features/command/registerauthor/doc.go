// Package registerauthor implements the Register Author use case.
package registerauthor
