// Package pghcl holds small helpers layered on top of hashicorp/hcl and
// go-cty: block lookups with duplicate detection and conversion of
// evaluated cty values into value.Value.
package pghcl
