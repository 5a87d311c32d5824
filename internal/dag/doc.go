// Package dag provides a small directed graph keyed by string ids. It is used
// to model references between definitions (a container depends on each
// definition it references) and to find reference cycles across the whole
// definition set.
package dag
