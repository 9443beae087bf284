// Package registry provides the central "glue" for the module system.
//
// The Registry maps the workflow names used on the command line and in
// configuration files (e.g., "do_stuff") to the compiled entry tasks that
// implement them. Modules register their workflows at startup; the registry
// is then validated against the loaded configuration so that a workflow
// block never points at an entry task that does not exist.
package registry
