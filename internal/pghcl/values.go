package pghcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pagegridgo/internal/value"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ToValue converts a fully known cty value into a value.Value.
func ToValue(v cty.Value) (value.Value, error) {
	if v.IsNull() {
		return value.Null(), nil
	}
	if !v.IsWhollyKnown() {
		return value.Value{}, fmt.Errorf("value is not known until evaluation")
	}
	v, _ = v.Unmark()

	ty := v.Type()
	switch {
	case ty == cty.String:
		return value.String(v.AsString()), nil
	case ty == cty.Bool:
		return value.Bool(v.True()), nil
	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return value.Value{}, err
		}
		return value.Number(f), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		elems := make([]value.Value, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			conv, err := ToValue(ev)
			if err != nil {
				return value.Value{}, fmt.Errorf("[%d]: %w", len(elems), err)
			}
			elems = append(elems, conv)
		}
		return value.Array(elems...), nil
	case ty.IsMapType() || ty.IsObjectType():
		fields := make(map[string]value.Value, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			conv, err := ToValue(ev)
			if err != nil {
				return value.Value{}, fmt.Errorf("%s: %w", k.AsString(), err)
			}
			fields[k.AsString()] = conv
		}
		return value.Object(fields), nil
	}
	return value.Value{}, fmt.Errorf("unsupported type %s", ty.FriendlyName())
}

// AttributesToObject evaluates every attribute with the given context and
// assembles the results into an object value.
func AttributesToObject(attrs hcl.Attributes, ctx *hcl.EvalContext) (value.Value, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	fields := make(map[string]value.Value, len(attrs))

	for name, attr := range attrs {
		ctyVal, exprDiags := attr.Expr.Value(ctx)
		diags = append(diags, exprDiags...)
		if exprDiags.HasErrors() {
			continue
		}
		v, err := ToValue(ctyVal)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported attribute value",
				Detail:   fmt.Sprintf("Attribute %q: %s.", name, err),
				Subject:  attr.Expr.Range().Ptr(),
			})
			continue
		}
		fields[name] = v
	}
	return value.Object(fields), diags
}
