// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Trigger, a named operation declared against an event
// class (onClick, onSubmit, onLoad, onSuccess, ...) of a definition.
//
// Why record IsDOMEvent?
//
// The same workflowTriggers map holds both triggers that react to a host event
// and continuations such as onSuccess that the trigger engine invokes after a
// batch. Only the former may be bound to a host event handler; binding both
// would run the continuation twice.
package model

import "github.com/specialistvlad/pagegridgo/internal/value"

// Namespace selects the family of implementations a trigger resolves in.
type Namespace string

const (
	// NamespaceAction holds one-off imperative operations.
	NamespaceAction Namespace = "action"
	// NamespaceClass holds behaviors keyed by a component name.
	NamespaceClass Namespace = "class"
)

// Valid reports whether ns is a known namespace.
func (ns Namespace) Valid() bool {
	return ns == NamespaceAction || ns == NamespaceClass
}

// Trigger is one declared operation.
type Trigger struct {
	Namespace  Namespace   `json:"namespace" yaml:"namespace"`
	Name       string      `json:"name" yaml:"name"`
	Content    value.Value `json:"content,omitzero" yaml:"content,omitempty"`
	Params     value.Value `json:"params,omitzero" yaml:"params,omitempty"`
	Order      float64     `json:"order,omitempty" yaml:"order,omitempty"`
	HasOrder   bool        `json:"-" yaml:"-"`
	IsDOMEvent bool        `json:"isDomEvent,omitempty" yaml:"isDomEvent,omitempty"`
}

// EffectiveContent returns Params when present and Content otherwise.
func (t Trigger) EffectiveContent() value.Value {
	if !t.Params.IsNull() {
		return t.Params
	}
	return t.Content
}

// String renders the trigger as "namespace/name".
func (t Trigger) String() string {
	return string(t.Namespace) + "/" + t.Name
}
