// Package trigger executes the named operations that definitions declare for
// UI events and lifecycle phases.
//
// An Engine resolves an Implementation for a (namespace, name) pair through a
// Resolver, normally the registry populated once at startup, and invokes it
// with the trigger content and an execution Context.
//
// # Batches
//
// ExecuteTriggers runs a list of triggers as one batch:
//
//  1. The list is stable-sorted by order, ascending. A missing order is 0.
//  2. Triggers run one at a time. A later trigger may rely on state an
//     earlier one set, so a batch is never parallelized.
//  3. A failing trigger is recorded and the batch moves on. Side effects of
//     earlier triggers are not undone.
//  4. After the batch, the onError continuation runs if anything failed, or
//     the onSuccess continuation if everything succeeded. Continuations run
//     with an empty workflow map so they cannot start further continuations.
//
// # Content
//
// Before an implementation sees it, textual content that looks like a JSON
// object or array is decoded (and kept as-is if decoding fails), then
// template tokens are substituted:
//
//	{{getVal:key}}             context value store, empty when absent
//	{{pageConfig.key}}         attribute of the primary definition
//	{{pageConfig.props.key}}   field of the primary definition's props
//	{{selected.key}}           the selected record
//	{{row.key}}                the row data
//
// A string that is exactly one token takes the token's value with its type.
// Tokens that cannot be resolved are left in place.
package trigger
