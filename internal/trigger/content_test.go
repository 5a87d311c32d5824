package trigger

import (
	"testing"

	"github.com/specialistvlad/pagegridgo/internal/datastore"
	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/pageconfig"
	"github.com/specialistvlad/pagegridgo/internal/value"
	"github.com/stretchr/testify/assert"
)

func templateContext() *Context {
	values := datastore.NewValues()
	values.Set("customerID", value.Number(42))
	values.Set("name", value.String("Ada"))

	primary := &model.Definition{
		Name: "CustomerPage",
		Raw: value.MustFromGo(map[string]any{
			"table": "customer",
			"props": map[string]any{"listEvent": "customerList"},
		}),
	}

	return &Context{
		Values:   values,
		Selected: value.MustFromGo(map[string]any{"id": 7, "status": "active"}),
		RowData:  value.MustFromGo(map[string]any{"total": 12.5}),
		PageConfig: &pageconfig.PageConfig{
			PrimaryEventType: "CustomerPage",
			EventTypes:       map[string]*model.Definition{"CustomerPage": primary},
		},
	}
}

func TestResolveTemplates(t *testing.T) {
	t.Parallel()

	ec := templateContext()
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"no tokens", "plain", "plain"},
		{"whole token keeps type", "{{getVal:customerID}}", 42},
		{"embedded token renders text", "id={{getVal:customerID}}", "id=42"},
		{"absent getVal renders empty", "x{{getVal:nope}}y", "xy"},
		{"absent getVal whole string", "{{getVal:nope}}", ""},
		{"page config attribute", "{{pageConfig.table}}", "customer"},
		{"page config primary name", "{{pageConfig.primaryEventType}}", "CustomerPage"},
		{"page config props", "load {{pageConfig.props.listEvent}}", "load customerList"},
		{"selected", "{{selected.status}}/{{selected.id}}", "active/7"},
		{"row", "{{row.total}}", 12.5},
		{"unresolved stays", "{{selected.missing}} {{unknown.x}}", "{{selected.missing}} {{unknown.x}}"},
		{"unresolved whole token stays", "{{row.missing}}", "{{row.missing}}"},
		{
			"nested structures and keys",
			map[string]any{
				"where": map[string]any{"{{getVal:name}}": "{{selected.id}}"},
				"list":  []any{"{{getVal:name}}", 1, true},
			},
			map[string]any{
				"where": map[string]any{"Ada": 7},
				"list":  []any{"Ada", 1, true},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveTemplates(value.MustFromGo(tc.in), ec)
			want := value.MustFromGo(tc.want)
			assert.True(t, want.Equal(got), "want %s, got %s", want.Text(), got.Text())
		})
	}
}

func TestResolveTemplates_EmptyContext(t *testing.T) {
	t.Parallel()

	got := ResolveTemplates(value.String("{{pageConfig.props.x}} {{getVal:y}}"), nil)
	assert.Equal(t, value.String("{{pageConfig.props.x}} "), got)
}
