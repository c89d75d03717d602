// Package internal contains shared infrastructure for the pagestack packages:
// the application and engine loggers.
// Types and functions in this package are not part of the public API.
package internal
