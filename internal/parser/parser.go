// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package parser reads one definition source unit and extracts the
// definitions it declares.
//
// Why support several formats?
//
// The shape of a definition is a tree of scalars, arrays and objects; nothing
// about it is tied to a particular syntax. Each format decoder only has to
// produce a value.Value per named definition, and Extract turns that into a
// model.Definition the same way regardless of origin.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/pagegridgo/internal/ctxlog"
	"github.com/specialistvlad/pagegridgo/internal/model"
)

// ParseError records a source unit that could not be read or decoded. It is
// non-fatal to discovery.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// decoder turns raw source bytes into named definition objects.
type decoder func(ctx context.Context, path string, src []byte) ([]namedObject, error)

var decoders = map[string]decoder{
	".hcl":  decodeHCL,
	".yaml": decodeYAML,
	".yml":  decodeYAML,
	".toml": decodeTOML,
	".json": decodeJSON,
}

// Extensions returns the supported file extensions, sorted.
func Extensions() []string {
	return []string{".hcl", ".json", ".toml", ".yaml", ".yml"}
}

// Supported reports whether the file at path has a supported extension.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ParseFile reads and parses the source unit at path.
func ParseFile(ctx context.Context, path string) ([]*model.Definition, error) {
	src, err := readFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return Parse(ctx, path, src)
}

// Parse extracts every definition declared in src. The extension of path
// selects the format. On any failure the unit yields no definitions.
func Parse(ctx context.Context, path string, src []byte) ([]*model.Definition, error) {
	logger := ctxlog.FromContext(ctx).With("file_path", path)
	logger.Debug("Parsing definition source")

	dec, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("unsupported extension %q", filepath.Ext(path))}
	}

	objects, err := dec(ctx, path, src)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	defs := make([]*model.Definition, 0, len(objects))
	for _, obj := range objects {
		def, err := Extract(obj.name, obj.value, path)
		if err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("definition %q: %w", obj.name, err)}
		}
		defs = append(defs, def)
	}

	logger.Debug("Parsed definition source", "count", len(defs))
	return defs, nil
}
