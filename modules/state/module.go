// Package state provides the triggers that mutate session state: the context
// value store, the DataStore, the open modals and the current form.
package state

import (
	"context"
	"fmt"

	"github.com/specialistvlad/pagegridgo/internal/modal"
	"github.com/specialistvlad/pagegridgo/internal/registry"
	"github.com/specialistvlad/pagegridgo/internal/trigger"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// SetVals merges an object into the context value store.
func SetVals(_ context.Context, content value.Value, ec *trigger.Context) (value.Value, error) {
	if ec == nil || ec.Values == nil {
		return value.Null(), fmt.Errorf("no context value store")
	}
	if !ec.Values.Merge(content) {
		return value.Null(), fmt.Errorf("setVals content must be an object, got %s", content.Kind())
	}
	return content, nil
}

// SetData returns its {componentId, data} content unchanged; the engine
// stores such results in the DataStore.
func SetData(_ context.Context, content value.Value, _ *trigger.Context) (value.Value, error) {
	if content.GetString("componentId") == "" {
		return value.Null(), fmt.Errorf("setData content needs a componentId")
	}
	if _, ok := content.Get("data"); !ok {
		return value.Null(), fmt.Errorf("setData content needs data")
	}
	return content, nil
}

// AppendData adds the {componentId, data} records to the component's list.
// An array appends each element; any other value is one record.
func AppendData(_ context.Context, content value.Value, ec *trigger.Context) (value.Value, error) {
	id := content.GetString("componentId")
	if id == "" {
		return value.Null(), fmt.Errorf("appendData content needs a componentId")
	}
	data, ok := content.Get("data")
	if !ok {
		return value.Null(), fmt.Errorf("appendData content needs data")
	}
	if ec == nil || ec.AppendData == nil {
		return value.Null(), fmt.Errorf("no data appender in context")
	}
	records := []value.Value{data}
	if data.IsArray() {
		records = data.Elements()
	}
	ec.AppendData(id, records...)
	return value.Number(float64(len(records))), nil
}

// modalID accepts a bare id or an object with modalId.
func modalID(content value.Value) (string, error) {
	if s, ok := content.AsString(); ok && s != "" {
		return s, nil
	}
	if id := content.GetString("modalId"); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("modal id missing from content %q", content.Text())
}

func signal(kind modal.SignalKind) trigger.Implementation {
	return func(_ context.Context, content value.Value, ec *trigger.Context) (value.Value, error) {
		if ec == nil || ec.Modals == nil {
			return value.Null(), fmt.Errorf("no modal set in context")
		}
		id, err := modalID(content)
		if err != nil {
			return value.Null(), err
		}
		if err := ec.Modals.Apply(modal.Signal{Kind: kind, ModalID: id}); err != nil {
			return value.Null(), err
		}
		return value.String(id), nil
	}
}

// ClearData is the 'clearData' class. Its content is the component name
// whose records are dropped.
func ClearData(_ context.Context, content value.Value, ec *trigger.Context) (value.Value, error) {
	id, _ := content.AsString()
	if id == "" && ec != nil {
		id = ec.ComponentID
	}
	if id == "" {
		return value.Null(), fmt.Errorf("clearData needs a component name")
	}
	if ec == nil || ec.SetData == nil {
		return value.Null(), fmt.Errorf("no data setter in context")
	}
	ec.SetData(id, nil)
	return value.String(id), nil
}

// ResetForm is the 'resetForm' class. It empties the batch's form data.
func ResetForm(_ context.Context, _ value.Value, ec *trigger.Context) (value.Value, error) {
	if ec != nil {
		ec.FormData = value.Null()
	}
	return value.Null(), nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction("setVals", SetVals)
	r.RegisterAction("setData", SetData)
	r.RegisterAction("appendData", AppendData)
	r.RegisterAction("openModal", signal(modal.SignalOpen))
	r.RegisterAction("closeModal", signal(modal.SignalClose))
	r.RegisterClass("clearData", ClearData)
	r.RegisterClass("resetForm", ResetForm)
}
