// Package config defines the format-agnostic configuration model of the
// application and the Loader interface that produces it.
//
// Concrete implementations, such as the HCL one, live in separate packages.
package config
