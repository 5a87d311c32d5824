// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Definition, the unit every other stage works with.
//
// Why keep both typed fields and the raw object?
//
// The typed fields (Components, Fields, WorkflowTriggers) are what the
// resolver, renderer and trigger engine actually interpret. The schema of a
// definition is open-ended though, and renderers read arbitrary keys such as
// `dataSource`, `textContent` or `rowKey` from it. Raw keeps the whole
// extracted object so nothing the author wrote is lost.
package model

import (
	"sort"

	"github.com/specialistvlad/pagegridgo/internal/value"
)

// Kind classifies a definition as a leaf or a container.
type Kind string

const (
	KindLeaf      Kind = "leaf"
	KindContainer Kind = "container"
)

// Definition is the format-agnostic representation of one event type.
type Definition struct {
	Name     string `json:"name" yaml:"name"`
	Kind     Kind   `json:"kind" yaml:"kind"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	// Type is the abstract element tag a renderer maps to a host primitive.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	Fields           []value.Value        `json:"fields,omitempty" yaml:"fields,omitempty"`
	FieldOverrides   value.Value          `json:"fieldOverrides,omitzero" yaml:"fieldOverrides,omitempty"`
	Actions          value.Value          `json:"actions,omitzero" yaml:"actions,omitempty"`
	Validation       value.Value          `json:"validation,omitzero" yaml:"validation,omitempty"`
	Components       []ComponentRef       `json:"components,omitempty" yaml:"components,omitempty"`
	WorkflowTriggers map[string][]Trigger `json:"workflowTriggers,omitempty" yaml:"workflowTriggers,omitempty"`

	// Attributes holds every key that has no dedicated field.
	Attributes map[string]value.Value `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	// Raw is the complete extracted object.
	Raw    value.Value `json:"-" yaml:"-"`
	Source *FSInfo     `json:"source,omitempty" yaml:"source,omitempty"`
}

func (d *Definition) IsContainer() bool { return d.Kind == KindContainer }

func (d *Definition) FieldCount() int { return len(d.Fields) }

// HasActions reports whether the definition declares any actions.
func (d *Definition) HasActions() bool {
	return !d.Actions.IsNull() && d.Actions.Len() > 0
}

// HasWorkflows reports whether any event class carries at least one trigger.
func (d *Definition) HasWorkflows() bool {
	for _, triggers := range d.WorkflowTriggers {
		if len(triggers) > 0 {
			return true
		}
	}
	return false
}

// Attr returns a top-level key of the raw object.
func (d *Definition) Attr(key string) (value.Value, bool) {
	return d.Raw.Get(key)
}

// EventClasses returns the declared workflow event classes in sorted order.
func (d *Definition) EventClasses() []string {
	classes := make([]string, 0, len(d.WorkflowTriggers))
	for class := range d.WorkflowTriggers {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}

// Equal compares two definitions by content. Source locations are ignored.
func (d *Definition) Equal(o *Definition) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.Name == o.Name && d.Kind == o.Kind && d.Raw.Equal(o.Raw)
}
