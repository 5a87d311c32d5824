// Package datastore holds the session-lifetime state that trigger batches
// read and mutate.
//
// # Stores
//
//   - Store maps a component id to the records a data-bound container
//     renders, one clone per record.
//   - Values is the flat key/value store behind `setVals` and the
//     `{{getVal:key}}` template token.
//
// Both are safe for concurrent use. Batches themselves run sequentially, but
// the HTTP server may serve unrelated batches at the same time, and no
// ordering between those is promised.
//
// Store notifies subscribers after every change so a renderer can re-render
// the affected container.
package datastore
