// Package discovery walks a definition tree, parses every source unit and
// assembles the name to Definition map together with the container
// dependency map.
package discovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/pagegridgo/internal/ctxlog"
	"github.com/specialistvlad/pagegridgo/internal/fsutil"
	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/parser"
)

// Options configure a discovery run.
type Options struct {
	Include []string
	Exclude []string
}

// Stats summarizes a discovery run.
type Stats struct {
	TotalEventTypes     int `json:"totalEventTypes" yaml:"totalEventTypes"`
	LeafEventTypes      int `json:"leafEventTypes" yaml:"leafEventTypes"`
	ContainerEventTypes int `json:"containerEventTypes" yaml:"containerEventTypes"`
	FilesScanned        int `json:"filesScanned" yaml:"filesScanned"`
	ParseErrors         int `json:"parseErrors" yaml:"parseErrors"`
}

// Result is the outcome of Discover.
type Result struct {
	Root         string                          `json:"root" yaml:"root"`
	Definitions  map[string]*model.Definition    `json:"eventTypes" yaml:"eventTypes"`
	Dependencies map[string][]model.ComponentRef `json:"dependencies" yaml:"dependencies"`
	Stats        Stats                           `json:"stats" yaml:"stats"`
	ParseErrors  []*parser.ParseError            `json:"-" yaml:"-"`
	Warnings     []string                        `json:"warnings" yaml:"warnings"`
}

// Discover recursively visits every definition source under root. Parse
// failures and unreadable subdirectories are recorded, not returned; only an
// unusable root is an error.
func Discover(ctx context.Context, root string, opts Options) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("component", "discovery", "root", root)
	logger.Debug("Discovery started")

	files, warnings, err := fsutil.FindDefinitionFiles(root, fsutil.FindOptions{
		Extensions: parser.Extensions(),
		Include:    opts.Include,
		Exclude:    opts.Exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find definition files in %s: %w", root, err)
	}
	for _, w := range warnings {
		logger.Warn("Skipping directory", "reason", w)
	}

	res := &Result{
		Root:         root,
		Definitions:  make(map[string]*model.Definition),
		Dependencies: make(map[string][]model.ComponentRef),
		Warnings:     append([]string{}, warnings...),
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Stats.FilesScanned++

		defs, err := parser.ParseFile(ctx, file)
		if err != nil {
			var perr *parser.ParseError
			if !errors.As(err, &perr) {
				perr = &parser.ParseError{Path: file, Err: err}
			}
			logger.Warn("Skipping unparseable definition source", "file_path", file, "error", perr.Err)
			res.ParseErrors = append(res.ParseErrors, perr)
			continue
		}
		for _, def := range defs {
			res.add(def)
		}
	}

	res.Stats.ParseErrors = len(res.ParseErrors)
	logger.Info("Discovery finished",
		"event_types", res.Stats.TotalEventTypes,
		"containers", res.Stats.ContainerEventTypes,
		"leaves", res.Stats.LeafEventTypes,
		"parse_errors", res.Stats.ParseErrors,
	)
	return res, nil
}

// add records def unless its name is taken; the first definition in sorted
// file order wins.
func (r *Result) add(def *model.Definition) {
	if prev, exists := r.Definitions[def.Name]; exists {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"duplicate event type '%s' in %s ignored, already defined in %s", def.Name, def.Source, prev.Source))
		return
	}
	r.Definitions[def.Name] = def
	r.Stats.TotalEventTypes++

	if def.IsContainer() {
		r.Stats.ContainerEventTypes++
		refs := make([]model.ComponentRef, len(def.Components))
		copy(refs, def.Components)
		r.Dependencies[def.Name] = refs
		return
	}
	r.Stats.LeafEventTypes++
}

// FromDefinitions builds a Result from definitions created in code.
func FromDefinitions(defs ...*model.Definition) *Result {
	res := &Result{
		Definitions:  make(map[string]*model.Definition),
		Dependencies: make(map[string][]model.ComponentRef),
	}
	for _, def := range defs {
		res.add(def)
	}
	return res
}
