package pageconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/pagegridgo/internal/ctxlog"
	"github.com/specialistvlad/pagegridgo/internal/discovery"
	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/value"
	"gopkg.in/yaml.v3"
)

// Stats summarizes a generated page config.
type Stats struct {
	TotalEventTypes     int `json:"totalEventTypes" yaml:"totalEventTypes"`
	LeafEventTypes      int `json:"leafEventTypes" yaml:"leafEventTypes"`
	ContainerEventTypes int `json:"containerEventTypes" yaml:"containerEventTypes"`
	TreeDepth           int `json:"treeDepth" yaml:"treeDepth"`
	NodeCount           int `json:"nodeCount" yaml:"nodeCount"`
	UnresolvedCount     int `json:"unresolvedCount" yaml:"unresolvedCount"`
	CircularCount       int `json:"circularCount" yaml:"circularCount"`
	MissingCount        int `json:"missingCount" yaml:"missingCount"`
}

// PageConfig is the generated artifact for one root definition. It is
// created whole and never mutated incrementally.
type PageConfig struct {
	ID                  string                          `json:"id" yaml:"id"`
	PrimaryEventType    string                          `json:"primaryEventType" yaml:"primaryEventType"`
	GeneratedAt         time.Time                       `json:"generatedAt" yaml:"generatedAt"`
	EventTypes          map[string]*model.Definition    `json:"eventTypes" yaml:"eventTypes"`
	Dependencies        map[string][]model.ComponentRef `json:"dependencies" yaml:"dependencies"`
	ComponentMap        ComponentMap                    `json:"componentMap" yaml:"componentMap"`
	RenderTree          *RenderNode                     `json:"renderTree" yaml:"renderTree"`
	LeafEventTypes      []string                        `json:"leafEventTypes" yaml:"leafEventTypes"`
	ContainerEventTypes []string                        `json:"containerEventTypes" yaml:"containerEventTypes"`
	Stats               Stats                           `json:"stats" yaml:"stats"`
	Warnings            []string                        `json:"warnings" yaml:"warnings"`
}

// Primary returns the root definition, or nil.
func (pc *PageConfig) Primary() *model.Definition {
	if pc == nil {
		return nil
	}
	return pc.EventTypes[pc.PrimaryEventType]
}

// Props returns the primary definition's 'props' object, or null.
func (pc *PageConfig) Props() value.Value {
	if p := pc.Primary(); p != nil {
		v, _ := p.Attr("props")
		return v
	}
	return value.Null()
}

// Generate builds the page config for primary from a discovery result. A
// missing primary aborts generation for this root only.
func Generate(ctx context.Context, res *discovery.Result, primary string, policy MatchPolicy) (*PageConfig, error) {
	logger := ctxlog.FromContext(ctx).With("component", "pageconfig", "primary", primary)
	logger.Debug("Generating page config")

	cm, unresolved := Resolver{Policy: policy}.Resolve(ctx, res.Definitions, res.Dependencies)

	tree, cycles, err := buildRenderTree(res.Definitions, primary, cm)
	if err != nil {
		return nil, err
	}

	pc := &PageConfig{
		ID:               uuid.New().String(),
		PrimaryEventType: primary,
		GeneratedAt:      time.Now().UTC(),
		EventTypes:       res.Definitions,
		Dependencies:     res.Dependencies,
		ComponentMap:     cm,
		RenderTree:       tree,
		Warnings:         []string{},
	}

	for name, def := range res.Definitions {
		if def.IsContainer() {
			pc.ContainerEventTypes = append(pc.ContainerEventTypes, name)
		} else {
			pc.LeafEventTypes = append(pc.LeafEventTypes, name)
		}
	}
	sort.Strings(pc.ContainerEventTypes)
	sort.Strings(pc.LeafEventTypes)

	pc.Stats = Stats{
		TotalEventTypes:     len(res.Definitions),
		LeafEventTypes:      len(pc.LeafEventTypes),
		ContainerEventTypes: len(pc.ContainerEventTypes),
		TreeDepth:           tree.Depth(),
	}
	tree.Walk(func(n *RenderNode) {
		pc.Stats.NodeCount++
		switch {
		case n.Unresolved:
			pc.Stats.UnresolvedCount++
		case n.Circular:
			pc.Stats.CircularCount++
		case n.Missing:
			pc.Stats.MissingCount++
		}
	})

	for _, u := range unresolved {
		pc.Warnings = append(pc.Warnings, u.Warning())
	}
	for _, c := range cycles {
		pc.Warnings = append(pc.Warnings, (&CircularDependencyError{Path: c}).Error())
	}

	logger.Info("Page config generated",
		"nodes", pc.Stats.NodeCount,
		"depth", pc.Stats.TreeDepth,
		"unresolved", pc.Stats.UnresolvedCount,
		"circular", pc.Stats.CircularCount,
	)
	return pc, nil
}

// Format selects the serialization of a written page config.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. Empty means FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	}
	return "", fmt.Errorf("invalid output format %q: must be 'json' or 'yaml'", s)
}

// Marshal serializes pc in the given format.
func Marshal(pc *PageConfig, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(pc)
	case FormatJSON, "":
		return json.MarshalIndent(pc, "", "  ")
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// Write stores pc as <dir>/<primary>.pageconfig.<format> and returns the path.
func Write(pc *PageConfig, dir string, format Format) (string, error) {
	if format == "" {
		format = FormatJSON
	}
	data, err := Marshal(pc, format)
	if err != nil {
		return "", fmt.Errorf("failed to encode page config %s: %w", pc.PrimaryEventType, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, pc.PrimaryEventType+".pageconfig."+string(format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write page config: %w", err)
	}
	return path, nil
}
