// Package registry provides the central "glue" for the trigger modules.
//
// The Registry maps the (namespace, name) pairs that definitions use in their
// workflowTriggers (e.g., action "setVals" or class "clearData") to the
// compiled Go functions that implement them. It is populated once at startup
// by each module's Register method, and lookups afterwards are plain map
// accesses.
//
// CheckDefinitions cross-checks a set of discovered definitions against the
// registry so that a trigger naming an unknown implementation is reported
// before a user ever fires it.
package registry
