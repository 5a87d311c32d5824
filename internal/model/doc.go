// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the Go representation of event type definitions.
// Its core purpose is to give the loosely shaped data read from definition
// sources a predictable, typed structure.
//
// # Core Concepts
//
//   - Definition: a named declarative unit. A leaf declares fields, a
//     container declares references to other definitions.
//
//   - ComponentRef: a by-id reference from a container to a child definition,
//     with optional layout hints.
//
//   - Trigger: a named, ordered operation declared against an event class or
//     lifecycle phase inside a definition's workflowTriggers.
//
//   - FSInfo: metadata that links every Definition back to its source file.
//
// Why a separate model package?
//
// Every later stage (discovery, resolution, rendering, trigger execution)
// consumes definitions without caring which format they were written in. The
// parser is the only component that knows about HCL, YAML, TOML or JSON; it
// produces these types and nothing downstream needs to look at raw source.
package model
