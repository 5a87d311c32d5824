package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

const (
	keyComponents       = "components"
	keyComponentRefs    = "componentReferences"
	keyFields           = "fields"
	keyFieldOverrides   = "fieldOverrides"
	keyActions          = "actions"
	keyWorkflowTriggers = "workflowTriggers"
	keyValidation       = "validation"
)

// special keys are extracted into dedicated Definition fields; every other
// key lands in Attributes.
var specialKeys = map[string]bool{
	keyComponents:       true,
	keyComponentRefs:    true,
	keyFields:           true,
	keyFieldOverrides:   true,
	keyActions:          true,
	keyWorkflowTriggers: true,
	keyValidation:       true,
}

// Extract builds a Definition from its decoded object. Missing optional keys
// are fine; a recognized key with the wrong shape is an error.
func Extract(name string, obj value.Value, path string) (*model.Definition, error) {
	if !obj.IsObject() {
		return nil, fmt.Errorf("definition must be an object, got %s", obj.Kind())
	}

	def := &model.Definition{
		Name:       name,
		Kind:       model.KindLeaf,
		Title:      obj.GetString("title"),
		Category:   obj.GetString("category"),
		Type:       obj.GetString("type"),
		Attributes: make(map[string]value.Value),
		Raw:        obj,
		Source:     model.NewFSInfo(path),
	}

	for _, key := range obj.Keys() {
		if !specialKeys[key] {
			v, _ := obj.Get(key)
			def.Attributes[key] = v
		}
	}

	if v, ok := obj.Get(keyFields); ok && !v.IsNull() {
		if !v.IsArray() {
			return nil, fmt.Errorf("%s must be an array, got %s", keyFields, v.Kind())
		}
		def.Fields = v.Elements()
	}

	def.FieldOverrides, _ = obj.Get(keyFieldOverrides)
	def.Actions, _ = obj.Get(keyActions)
	def.Validation, _ = obj.Get(keyValidation)

	refs, isContainer, err := extractComponents(obj)
	if err != nil {
		return nil, err
	}
	if isContainer {
		def.Kind = model.KindContainer
		def.Components = refs
	}

	if v, ok := obj.Get(keyWorkflowTriggers); ok && !v.IsNull() {
		triggers, err := extractWorkflowTriggers(v)
		if err != nil {
			return nil, err
		}
		def.WorkflowTriggers = triggers
	}

	return def, nil
}

// extractComponents reads 'components', falling back to the legacy
// 'componentReferences' list. When both are present the latter only
// supplies layout hints for ids the former lacks them for.
func extractComponents(obj value.Value) ([]model.ComponentRef, bool, error) {
	comps, hasComps := obj.Get(keyComponents)
	hints, hasHints := obj.Get(keyComponentRefs)
	hasComps = hasComps && !comps.IsNull()
	hasHints = hasHints && !hints.IsNull()

	if !hasComps && !hasHints {
		return nil, false, nil
	}

	var refs, hintRefs []model.ComponentRef
	var err error
	if hasHints {
		if hintRefs, err = componentList(keyComponentRefs, hints); err != nil {
			return nil, false, err
		}
	}
	if !hasComps {
		return hintRefs, true, nil
	}
	if refs, err = componentList(keyComponents, comps); err != nil {
		return nil, false, err
	}

	byID := make(map[string]model.ComponentRef, len(hintRefs))
	for _, h := range hintRefs {
		if _, dup := byID[h.ID]; !dup {
			byID[h.ID] = h
		}
	}
	for i, ref := range refs {
		h, ok := byID[ref.ID]
		if !ok {
			continue
		}
		if ref.Container == "" {
			refs[i].Container = h.Container
		}
		if ref.Position.IsNull() {
			refs[i].Position = h.Position
		}
	}
	return refs, true, nil
}

func componentList(key string, v value.Value) ([]model.ComponentRef, error) {
	if !v.IsArray() {
		return nil, fmt.Errorf("%s must be an array, got %s", key, v.Kind())
	}
	elems := v.Elements()
	refs := make([]model.ComponentRef, 0, len(elems))
	for i, e := range elems {
		ref, err := ParseComponentRef(e)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// ParseComponentRef accepts either a bare id or an object with an 'id' and
// optional 'container' and 'position' hints.
func ParseComponentRef(v value.Value) (model.ComponentRef, error) {
	switch v.Kind() {
	case value.KindString:
		s, _ := v.AsString()
		return model.ComponentRef{ID: s}, nil
	case value.KindObject:
		id, _ := v.Get("id")
		if id.IsNull() {
			id, _ = v.Get("eventType")
		}
		ref := model.ComponentRef{
			ID:        id.Text(),
			Container: v.GetString("container"),
		}
		ref.Position, _ = v.Get("position")
		return ref, nil
	}
	return model.ComponentRef{}, fmt.Errorf("component reference must be a string or an object, got %s", v.Kind())
}

func extractWorkflowTriggers(v value.Value) (map[string][]model.Trigger, error) {
	if !v.IsObject() {
		return nil, fmt.Errorf("%s must be an object, got %s", keyWorkflowTriggers, v.Kind())
	}

	out := make(map[string][]model.Trigger, v.Len())
	for _, class := range v.Keys() {
		entries, _ := v.Get(class)
		var list []value.Value
		switch entries.Kind() {
		case value.KindArray:
			list = entries.Elements()
		case value.KindNull:
		default:
			list = []value.Value{entries}
		}

		triggers := make([]model.Trigger, 0, len(list))
		for i, e := range list {
			t, err := ParseTrigger(e)
			if err != nil {
				return nil, fmt.Errorf("%s.%s[%d]: %w", keyWorkflowTriggers, class, i, err)
			}
			triggers = append(triggers, t)
		}
		out[class] = triggers
	}
	return out, nil
}

// ParseTrigger accepts a bare action name or a trigger object. The name comes
// from an 'action' or 'class' key, or from 'name' with an optional
// 'trigType'/'namespace'. The namespace defaults to action.
func ParseTrigger(v value.Value) (model.Trigger, error) {
	switch v.Kind() {
	case value.KindString:
		s, _ := v.AsString()
		return model.Trigger{Namespace: model.NamespaceAction, Name: s}, nil
	case value.KindObject:
	default:
		return model.Trigger{}, fmt.Errorf("trigger must be a string or an object, got %s", v.Kind())
	}

	t := model.Trigger{Namespace: model.NamespaceAction}
	switch {
	case v.GetString("action") != "":
		t.Name = v.GetString("action")
	case v.GetString("class") != "":
		t.Namespace = model.NamespaceClass
		t.Name = v.GetString("class")
	default:
		t.Name = v.GetString("name")
		ns := v.GetString("trigType")
		if ns == "" {
			ns = v.GetString("namespace")
		}
		if ns != "" {
			t.Namespace = model.Namespace(strings.ToLower(ns))
		}
	}

	for _, key := range []string{"order", "ordr"} {
		if o, ok := v.Get(key); ok && !o.IsNull() {
			n, ok := value.ToNumber(o)
			if !ok {
				slog.Warn("Ignoring non-numeric trigger order", "trigger", t.Name, "key", key, "value", o.Text())
				break
			}
			t.Order = n
			t.HasOrder = true
			break
		}
	}

	t.Content, _ = v.Get("content")
	t.Params, _ = v.Get("params")

	for _, key := range []string{"is_dom_event", "isDomEvent"} {
		if f, ok := v.Get(key); ok {
			t.IsDOMEvent, _ = value.ToBool(f)
			break
		}
	}

	return t, nil
}
