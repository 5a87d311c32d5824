// Package pageconfig resolves component references between definitions,
// expands a chosen root definition into a render tree and packages the
// result as a serializable PageConfig. It also validates page configs and
// individual definitions against the grid layout standards.
package pageconfig
