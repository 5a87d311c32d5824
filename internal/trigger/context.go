package trigger

import (
	"github.com/specialistvlad/pagegridgo/internal/datastore"
	"github.com/specialistvlad/pagegridgo/internal/modal"
	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/pageconfig"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

// Context is the ambient data threaded through one trigger batch. It is
// built fresh per batch; implementations may update FormData, Values and the
// stores it points at.
type Context struct {
	// Event is the payload of the originating host event.
	Event    value.Value
	FormData value.Value
	RowData  value.Value
	Selected value.Value
	// This describes the element the event fired on, e.g. {value: <row key>}.
	This value.Value

	Values      *datastore.Values
	ComponentID string
	PageConfig  *pageconfig.PageConfig
	// SetData replaces the records of a component in the DataStore.
	SetData     func(componentID string, records []value.Value)
	// AppendData adds records to the end of a component's list.
	AppendData  func(componentID string, records ...value.Value)
	Modals      *modal.Set

	// WorkflowTriggers is the owning definition's full workflow map, used to
	// find the onSuccess and onError continuations.
	WorkflowTriggers map[string][]model.Trigger

	// Response is the last result of the batch an onSuccess continuation
	// follows. Error is the last failure an onError continuation follows.
	Response value.Value
	Error    error

	Engine *Engine
}

// continuation copies c for a follow-up batch that must not recurse.
func (c *Context) continuation() *Context {
	cp := *c
	cp.WorkflowTriggers = nil
	return &cp
}
