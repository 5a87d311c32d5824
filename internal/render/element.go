package render

import (
	"context"
	"encoding/json"

	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/trigger"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

// Flags that mark placeholder elements.
const (
	FlagCircular   = "circular"
	FlagMissing    = "missing"
	FlagUnresolved = "unresolved"
)

// Element is one host primitive to create.
type Element struct {
	Tag       string                 `json:"tag"`
	ID        string                 `json:"id"`
	EventType string                 `json:"eventType,omitempty"`
	Text      string                 `json:"text,omitempty"`
	Attrs     map[string]value.Value `json:"attrs,omitempty"`
	Handlers  map[string]*Handler    `json:"handlers,omitempty"`
	Children  []*Element             `json:"children,omitempty"`
	Flags     []string               `json:"flags,omitempty"`
}

// Find returns the first element in the subtree with the given id.
func (e *Element) Find(id string) *Element {
	if e == nil {
		return nil
	}
	if e.ID == id {
		return e
	}
	for _, c := range e.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Handler is a synthesized host event handler.
type Handler struct {
	EventClass string
	// Merged lists the other event classes bound to the same host event.
	Merged []string
	// Triggers are the triggers the host event runs directly.
	Triggers []model.Trigger

	componentID string
	this        value.Value
	selected    value.Value
	rowData     value.Value
	workflow    map[string][]model.Trigger
	interp      *Interpreter
}

// Fire runs the handler's triggers as one batch with a fresh context.
func (h *Handler) Fire(ctx context.Context, event, formData value.Value) *trigger.Report {
	ec := h.interp.context()
	ec.Event = event
	ec.FormData = formData
	ec.ComponentID = h.componentID
	ec.This = h.this
	ec.Selected = h.selected
	ec.RowData = h.rowData
	ec.WorkflowTriggers = h.workflow
	return h.interp.engine.ExecuteTriggers(ctx, h.Triggers, ec)
}

func (h *Handler) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventClass string          `json:"eventClass"`
		Merged     []string        `json:"merged,omitempty"`
		Triggers   []model.Trigger `json:"triggers"`
	}{h.EventClass, h.Merged, h.Triggers})
}
