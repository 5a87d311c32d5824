package pageconfig

import (
	"fmt"

	"github.com/specialistvlad/pagegridgo/internal/dag"
	"github.com/specialistvlad/pagegridgo/internal/model"
)

// Report is the validation outcome. Its shape is the same for every input:
// slices are never nil and Summary is always set.
type Report struct {
	Valid      bool     `json:"valid" yaml:"valid"`
	Violations []string `json:"violations" yaml:"violations"`
	Warnings   []string `json:"warnings" yaml:"warnings"`
	Summary    string   `json:"summary" yaml:"summary"`
}

func newReport(violations, warnings []string) Report {
	if violations == nil {
		violations = []string{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	return Report{
		Valid:      len(violations) == 0,
		Violations: violations,
		Warnings:   warnings,
		Summary:    fmt.Sprintf("%d violations, %d warnings", len(violations), len(warnings)),
	}
}

// WithWarnings returns a copy of r with extra warnings appended and the
// summary recounted.
func (r Report) WithWarnings(warnings ...string) Report {
	if len(warnings) == 0 {
		return r
	}
	merged := append(append([]string{}, r.Warnings...), warnings...)
	return newReport(r.Violations, merged)
}

// Validate re-walks the page config from its definitions and component map,
// independently of the stored render tree. A missing primary and any cycle
// on a path are violations; unresolved references are warnings. Cycles among
// definitions the primary never reaches are reported as warnings.
func Validate(pc *PageConfig) Report {
	if pc == nil {
		return newReport([]string{"Page config is empty"}, nil)
	}

	v := &validator{pc: pc, onPath: make(map[string]bool), seen: make(map[string]bool)}
	if _, ok := pc.EventTypes[pc.PrimaryEventType]; !ok {
		v.violation((&MissingPrimaryError{Name: pc.PrimaryEventType}).Error())
		return newReport(v.violations, v.warnings)
	}

	v.walk(pc.PrimaryEventType)
	v.crossCheck()
	return newReport(v.violations, v.warnings)
}

type validator struct {
	pc         *PageConfig
	onPath     map[string]bool
	path       []string
	seen       map[string]bool
	violations []string
	warnings   []string
}

func (v *validator) violation(msg string) {
	if !v.seen["v:"+msg] {
		v.seen["v:"+msg] = true
		v.violations = append(v.violations, msg)
	}
}

func (v *validator) warning(msg string) {
	if !v.seen["w:"+msg] {
		v.seen["w:"+msg] = true
		v.warnings = append(v.warnings, msg)
	}
}

func (v *validator) walk(name string) {
	if v.onPath[name] {
		cycle := append(append([]string{}, v.path[indexOf(v.path, name):]...), name)
		v.violation((&CircularDependencyError{Path: cycle}).Error())
		return
	}
	if _, ok := v.pc.EventTypes[name]; !ok {
		return
	}

	v.onPath[name] = true
	v.path = append(v.path, name)
	for _, ref := range v.pc.ComponentMap[name] {
		switch {
		case ref.Unresolved:
			v.warning(UnresolvedReference{ID: ref.ID, Parent: name, Candidates: ref.Candidates}.Warning())
		case v.pc.EventTypes[ref.EventType] == nil:
			v.warning(fmt.Sprintf("Component '%s' in '%s' resolves to missing eventType '%s'", ref.ID, name, ref.EventType))
		default:
			v.walk(ref.EventType)
		}
	}
	v.path = v.path[:len(v.path)-1]
	delete(v.onPath, name)
}

// ReferenceGraph builds the parent to component graph over defs. Unresolved
// refs and refs to absent definitions are left out.
func ReferenceGraph(defs map[string]*model.Definition, cm ComponentMap) *dag.Graph {
	g := dag.New()
	for name := range defs {
		g.AddNode(name)
	}
	for parent, refs := range cm {
		for _, ref := range refs {
			if ref.Unresolved || defs[ref.EventType] == nil || defs[parent] == nil {
				continue
			}
			// Both endpoints exist, so AddEdge cannot fail.
			_ = g.AddEdge(parent, ref.EventType)
		}
	}
	return g
}

// crossCheck looks for reference cycles across the whole definition graph
// and reports the ones outside the primary's reach.
func (v *validator) crossCheck() {
	g := ReferenceGraph(v.pc.EventTypes, v.pc.ComponentMap)
	reachable := g.Reachable(v.pc.PrimaryEventType)
	for _, cycle := range g.FindCycles() {
		if reachable[cycle[0]] {
			continue
		}
		v.warning("Circular dependency outside the render tree: " + dag.FormatPath(cycle))
	}
}
