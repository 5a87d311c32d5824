package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/pagegridgo/internal/ctxlog"
	"github.com/specialistvlad/pagegridgo/internal/model"
)

// CheckDefinitions performs a parity check between the triggers that
// definitions declare and the implementations registered in Go. Each
// trigger without an implementation yields one message. The check never
// fails: an unknown trigger still fails in isolation when it runs.
func (r *Registry) CheckDefinitions(ctx context.Context, defs map[string]*model.Definition) []string {
	logger := ctxlog.FromContext(ctx)

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	var problems []string
	for _, name := range names {
		def := defs[name]
		for _, class := range def.EventClasses() {
			for i, t := range def.WorkflowTriggers[class] {
				if _, ok := r.Lookup(t.Namespace, t.Name); ok {
					continue
				}
				problems = append(problems, fmt.Sprintf("eventType '%s' workflowTriggers.%s[%d]: no implementation registered for %s", name, class, i, t))
			}
		}
	}

	if len(problems) > 0 {
		logger.Warn("Definitions reference unregistered triggers", "count", len(problems))
	}
	return problems
}
