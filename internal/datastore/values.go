package datastore

import (
	"sync"

	"github.com/specialistvlad/pagegridgo/internal/value"
)

// Values is the context value store read by `{{getVal:key}}`.
type Values struct {
	m sync.Map // Key: string, Value: value.Value
}

// NewValues creates an empty value store.
func NewValues() *Values {
	return &Values{}
}

// Get returns a stored value. A nil store holds nothing.
func (v *Values) Get(key string) (value.Value, bool) {
	if v == nil {
		return value.Null(), false
	}
	f, ok := v.m.Load(key)
	if !ok {
		return value.Null(), false
	}
	return f.(value.Value), true
}

func (v *Values) Set(key string, val value.Value) {
	v.m.Store(key, val)
}

func (v *Values) Delete(key string) {
	v.m.Delete(key)
}

// Merge stores every field of an object. Non-objects are ignored and
// reported as false.
func (v *Values) Merge(obj value.Value) bool {
	if !obj.IsObject() {
		return false
	}
	for k, f := range obj.Fields() {
		v.m.Store(k, f)
	}
	return true
}

// Snapshot returns the store as an object.
func (v *Values) Snapshot() value.Value {
	fields := make(map[string]value.Value)
	if v != nil {
		v.m.Range(func(k, f any) bool {
			fields[k.(string)] = f.(value.Value)
			return true
		})
	}
	return value.Object(fields)
}
