package render

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/pagegridgo/internal/ctxlog"
	"github.com/specialistvlad/pagegridgo/internal/datastore"
	"github.com/specialistvlad/pagegridgo/internal/modal"
	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/pageconfig"
	"github.com/specialistvlad/pagegridgo/internal/trigger"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

// reservedProps are interpreter inputs, not host attributes.
var reservedProps = map[string]bool{
	"workflowTriggers": true,
	"components":       true,
	"textContent":      true,
	"dataSource":       true,
	"rowKey":           true,
	"selectable":       true,
	"columns":          true,
}

// Interpreter binds a page config to the session stores.
type Interpreter struct {
	page   *pageconfig.PageConfig
	engine *trigger.Engine
	store  *datastore.Store
	values *datastore.Values
	modals *modal.Set
}

// New creates an interpreter. Nil stores are replaced by empty ones.
func New(page *pageconfig.PageConfig, engine *trigger.Engine, store *datastore.Store, values *datastore.Values, modals *modal.Set) *Interpreter {
	if store == nil {
		store = datastore.New()
	}
	if values == nil {
		values = datastore.NewValues()
	}
	if modals == nil {
		modals = modal.NewSet()
	}
	return &Interpreter{page: page, engine: engine, store: store, values: values, modals: modals}
}

func (in *Interpreter) context() *trigger.Context {
	return &trigger.Context{
		Values:     in.values,
		PageConfig: in.page,
		SetData:    in.store.Set,
		AppendData: in.store.Append,
		Modals:     in.modals,
		Engine:     in.engine,
	}
}

// Mount runs the primary definition's onLoad triggers. It returns nil when
// there are none.
func (in *Interpreter) Mount(ctx context.Context) *trigger.Report {
	primary := in.page.Primary()
	if primary == nil || len(primary.WorkflowTriggers["onLoad"]) == 0 {
		return nil
	}
	ctxlog.FromContext(ctx).Debug("Executing page-level onLoad triggers", "primary", primary.Name)
	ec := in.context()
	ec.ComponentID = primary.Name
	ec.WorkflowTriggers = primary.WorkflowTriggers
	return in.engine.ExecuteTriggers(ctx, primary.WorkflowTriggers["onLoad"], ec)
}

// Render produces the element tree for the current DataStore and modal
// state.
func (in *Interpreter) Render(ctx context.Context) *Element {
	if in.page == nil || in.page.RenderTree == nil {
		return &Element{Tag: "div", Text: "No config provided"}
	}
	return in.render(ctx, in.page.RenderTree, nil)
}

// row is the record a cloned subtree is bound to.
type row struct {
	record value.Value
	index  int
	// onChange holds the owning grid's onChange triggers, bound to the
	// cloned tr as a click handler.
	onChange []model.Trigger
	rowKey   string
}

func (in *Interpreter) render(ctx context.Context, node *pageconfig.RenderNode, r *row) *Element {
	id := node.ID
	if r != nil {
		id = fmt.Sprintf("%s_%d", node.ID, r.index)
	}

	if node.Flagged() {
		return placeholder(node, id)
	}

	if strings.EqualFold(node.Container, "modal") || strings.EqualFold(node.Config.GetString("container"), "modal") {
		if !in.modals.IsOpen(node.ID) && !in.modals.IsOpen(node.EventType) {
			return nil
		}
	}

	def := in.page.EventTypes[node.EventType]
	el := &Element{
		Tag:       ElementFor(node.Type),
		ID:        id,
		EventType: node.EventType,
		Attrs:     attrs(node),
	}
	if def != nil {
		el.Handlers = in.handlers(def, node.ID)
	}

	if r != nil && strings.EqualFold(node.Type, "tr") && len(r.onChange) > 0 {
		if el.Handlers == nil {
			el.Handlers = make(map[string]*Handler)
		}
		rowValue, _ := r.record.Get(r.rowKey)
		el.Handlers["onClick"] = &Handler{
			EventClass:  "onChange",
			Triggers:    r.onChange,
			componentID: node.ID,
			this:        value.Object(map[string]value.Value{"value": rowValue}),
			selected:    r.record,
			rowData:     r.record,
			workflow:    map[string][]model.Trigger{"onChange": r.onChange},
			interp:      in,
		}
	}

	if source := setting(node, "dataSource"); source != "" && len(node.Children) > 0 {
		if records := in.store.Get(source); len(records) > 0 {
			el.Children = in.rows(ctx, node, source, records)
			el.Text = substitute(node.Config.GetString("textContent"), r)
			return el
		}
	}

	for _, child := range node.Children {
		if c := in.render(ctx, child, r); c != nil {
			el.Children = append(el.Children, c)
		}
	}

	el.Text = substitute(node.Config.GetString("textContent"), r)
	if el.Text == "" && len(el.Children) == 0 {
		props, _ := node.Config.Get("props")
		for _, key := range []string{"label", "title"} {
			if s := props.GetString(key); s != "" {
				el.Text = s
				break
			}
		}
	}
	return el
}

// rows clones the node's first child once per record.
func (in *Interpreter) rows(ctx context.Context, node *pageconfig.RenderNode, source string, records []value.Value) []*Element {
	rowKey := setting(node, "rowKey")
	if rowKey == "" {
		rowKey = "id"
	}

	var onChange []model.Trigger
	if grid := in.page.EventTypes[source]; grid != nil {
		onChange = grid.WorkflowTriggers["onChange"]
	} else if own := in.page.EventTypes[node.EventType]; own != nil {
		onChange = own.WorkflowTriggers["onChange"]
	}

	ctxlog.FromContext(ctx).Debug("Rendering repeating rows", "data_source", source, "records", len(records))
	tmpl := node.Children[0]
	out := make([]*Element, 0, len(records))
	for idx, rec := range records {
		if c := in.render(ctx, tmpl, &row{record: rec, index: idx, onChange: onChange, rowKey: rowKey}); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// handlers synthesizes one handler per host event name that has at least one
// trigger flagged as a host event. Only flagged triggers are bound; the rest
// stay reachable as continuations through the workflow map. Classes sharing a
// host name are merged into one handler, the class named after the host event
// first, then the others in sorted order.
func (in *Interpreter) handlers(def *model.Definition, componentID string) map[string]*Handler {
	classes := def.EventClasses()
	sort.SliceStable(classes, func(i, j int) bool {
		return HandlerName(classes[i]) == classes[i] && HandlerName(classes[j]) != classes[j]
	})

	var out map[string]*Handler
	for _, class := range classes {
		var dom []model.Trigger
		for _, t := range def.WorkflowTriggers[class] {
			if t.IsDOMEvent {
				dom = append(dom, t)
			}
		}
		if len(dom) == 0 {
			continue
		}
		name := HandlerName(class)
		if h, ok := out[name]; ok {
			h.Triggers = append(h.Triggers, dom...)
			h.Merged = append(h.Merged, class)
			continue
		}
		if out == nil {
			out = make(map[string]*Handler)
		}
		out[name] = &Handler{
			EventClass:  class,
			Triggers:    dom,
			componentID: componentID,
			workflow:    def.WorkflowTriggers,
			interp:      in,
		}
	}
	return out
}

// setting reads an interpreter input from the node's props, falling back to
// the top-level config.
func setting(node *pageconfig.RenderNode, key string) string {
	if props, ok := node.Config.Get("props"); ok {
		if s := props.GetString(key); s != "" {
			return s
		}
	}
	return node.Config.GetString(key)
}

func placeholder(node *pageconfig.RenderNode, id string) *Element {
	el := &Element{Tag: "div", ID: id, EventType: node.EventType}
	switch {
	case node.Circular:
		el.Flags = append(el.Flags, FlagCircular)
	case node.Missing:
		el.Flags = append(el.Flags, FlagMissing)
	case node.Unresolved:
		el.Flags = append(el.Flags, FlagUnresolved)
	}
	el.Text = fmt.Sprintf("[%s: %s]", el.Flags[0], node.EventType)
	return el
}

// attrs collects host attributes: grid placement, the container hint and
// non-reserved props.
func attrs(node *pageconfig.RenderNode) map[string]value.Value {
	out := make(map[string]value.Value)
	if props, ok := node.Config.Get("props"); ok && props.IsObject() {
		for _, k := range props.Keys() {
			if !reservedProps[k] {
				out[k], _ = props.Get(k)
			}
		}
	}
	if node.Container != "" {
		out["container"] = value.String(node.Container)
	}

	pos := node.Position
	if pos.IsNull() {
		pos, _ = node.Config.Get("position")
	}
	col, hasCol := pos.Get("col")
	rw, hasRow := pos.Get("row")
	if hasCol && hasRow {
		out["gridColumn"] = value.String(span(col))
		out["gridRow"] = value.String(span(rw))
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func span(v value.Value) string {
	start, _ := v.Get("start")
	n, _ := v.Get("span")
	return start.Text() + " / span " + n.Text()
}

// substitute replaces {field} tokens with the row's values.
func substitute(text string, r *row) string {
	if r == nil || !strings.Contains(text, "{") {
		return text
	}
	fields := r.record.Fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		text = strings.ReplaceAll(text, "{"+k+"}", fields[k].Text())
	}
	return text
}
