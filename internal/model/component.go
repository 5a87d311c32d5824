// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import "github.com/specialistvlad/pagegridgo/internal/value"

// ComponentRef is a by-id reference from a container to a child definition.
// Resolution of ID against definition names may legitimately fail.
type ComponentRef struct {
	ID        string      `json:"id" yaml:"id"`
	Container string      `json:"container,omitempty" yaml:"container,omitempty"`
	Position  value.Value `json:"position,omitzero" yaml:"position,omitempty"`
}
