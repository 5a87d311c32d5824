package pghcl

import (
	"github.com/hashicorp/hcl/v2"
)

// FindUniqueBlock searches a slice of blocks for all blocks of a given name.
// It returns a diagnostic error if more than one block of that name is found.
// If no block is found, it returns nil.
func FindUniqueBlock(blocks hcl.Blocks, name string) (*hcl.Block, hcl.Diagnostics) {
	var found *hcl.Block
	var diags hcl.Diagnostics

	for _, block := range blocks {
		if block.Type != name {
			continue
		}
		if found != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate \"" + name + "\" block",
				Detail:   "Only one \"" + name + "\" block is allowed.",
				Subject:  &block.DefRange,
			})
			continue
		}
		found = block
	}

	return found, diags
}

// BlocksByFirstLabel groups blocks of the given type by their first label,
// preserving declaration order. A repeated label is an error; the first
// declaration wins.
func BlocksByFirstLabel(blocks hcl.Blocks, typeName string) ([]*hcl.Block, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	seen := make(map[string]hcl.Range)
	var out []*hcl.Block

	for _, block := range blocks {
		if block.Type != typeName || len(block.Labels) == 0 {
			continue
		}
		label := block.Labels[0]
		if prev, dup := seen[label]; dup {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate \"" + typeName + "\" block",
				Detail:   "A \"" + typeName + "\" block labeled \"" + label + "\" was already declared at " + prev.String() + ".",
				Subject:  &block.DefRange,
			})
			continue
		}
		seen[label] = block.DefRange
		out = append(out, block)
	}
	return out, diags
}
