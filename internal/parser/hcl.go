package parser

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/pghcl"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

// hclRoot defines the top-level structure of the file, expecting one or more 'event_type' blocks.
type hclRoot struct {
	EventTypes []*hclEventType `hcl:"event_type,block"`
}

// hclEventType represents a single 'event_type' block for decoding purposes.
type hclEventType struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

var eventTypeBodySchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "props"},
		{Type: "workflow", LabelNames: []string{"class"}},
	},
}

var workflowBodySchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "trigger", LabelNames: []string{"namespace", "name"}},
	},
}

// decodeHCL reads 'event_type' blocks. Plain attributes are evaluated
// without variables or functions; a 'props' block and 'workflow "<class>"'
// blocks holding 'trigger "<namespace>" "<name>"' blocks are accepted as an
// alternative to the equivalent object attributes.
func decodeHCL(_ context.Context, path string, src []byte) ([]namedObject, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, diags
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, diags
	}

	var allDiags hcl.Diagnostics
	out := make([]namedObject, 0, len(root.EventTypes))
	for _, et := range root.EventTypes {
		obj, diags := decodeEventTypeBody(et.Body)
		allDiags = append(allDiags, diags...)
		if diags.HasErrors() {
			continue
		}
		out = append(out, namedObject{name: et.Name, value: obj})
	}

	if allDiags.HasErrors() {
		return nil, allDiags
	}
	return out, nil
}

func decodeEventTypeBody(body hcl.Body) (value.Value, hcl.Diagnostics) {
	content, remain, diags := body.PartialContent(eventTypeBodySchema)
	if diags.HasErrors() {
		return value.Value{}, diags
	}

	attrs, attrDiags := remain.JustAttributes()
	diags = append(diags, attrDiags...)
	if attrDiags.HasErrors() {
		return value.Value{}, diags
	}

	obj, objDiags := pghcl.AttributesToObject(attrs, nil)
	diags = append(diags, objDiags...)

	propsBlock, propsDiags := pghcl.FindUniqueBlock(content.Blocks, "props")
	diags = append(diags, propsDiags...)
	if propsBlock != nil {
		if _, exists := obj.Get("props"); exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Conflicting props",
				Detail:   "Use either a 'props' attribute or a 'props' block, not both.",
				Subject:  &propsBlock.DefRange,
			})
		} else {
			propAttrs, d := propsBlock.Body.JustAttributes()
			diags = append(diags, d...)
			props, d := pghcl.AttributesToObject(propAttrs, nil)
			diags = append(diags, d...)
			obj = obj.With("props", props)
		}
	}

	workflows, wfDiags := pghcl.BlocksByFirstLabel(content.Blocks, "workflow")
	diags = append(diags, wfDiags...)
	if len(workflows) > 0 {
		merged, d := mergeWorkflowBlocks(obj, workflows)
		diags = append(diags, d...)
		obj = merged
	}

	return obj, diags
}

// mergeWorkflowBlocks appends block-declared triggers after any triggers the
// 'workflowTriggers' attribute already declares for the same class.
func mergeWorkflowBlocks(obj value.Value, blocks []*hcl.Block) (value.Value, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	existing, _ := obj.Get(keyWorkflowTriggers)
	classes := existing.Fields()
	if classes == nil {
		classes = make(map[string]value.Value)
	}

	for _, block := range blocks {
		class := block.Labels[0]
		content, d := block.Body.Content(workflowBodySchema)
		diags = append(diags, d...)
		if d.HasErrors() {
			continue
		}

		triggers := classes[class].Elements()
		for _, tb := range content.Blocks {
			ns := model.Namespace(tb.Labels[0])
			if !ns.Valid() {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid trigger namespace",
					Detail:   fmt.Sprintf("Trigger namespace must be %q or %q, got %q.", model.NamespaceAction, model.NamespaceClass, ns),
					Subject:  &tb.DefRange,
				})
				continue
			}
			attrs, d := tb.Body.JustAttributes()
			diags = append(diags, d...)
			tobj, d := pghcl.AttributesToObject(attrs, nil)
			diags = append(diags, d...)
			triggers = append(triggers, tobj.With(string(ns), value.String(tb.Labels[1])))
		}
		classes[class] = value.Array(triggers...)
	}

	return obj.With(keyWorkflowTriggers, value.Object(classes)), diags
}
