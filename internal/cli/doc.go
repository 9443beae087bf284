// Package cli defines the taskgrid command line: flag parsing, validation
// and dispatch to the application.
package cli
