package pageconfig

import (
	"fmt"

	"github.com/specialistvlad/pagegridgo/internal/dag"
)

// MissingPrimaryError aborts generation for a root that has no definition.
type MissingPrimaryError struct {
	Name string
}

func (e *MissingPrimaryError) Error() string {
	return fmt.Sprintf("Primary eventType '%s' not found", e.Name)
}

// CircularDependencyError describes a path that revisits one of its own
// ancestors. The render tree flags such nodes; validation reports them.
type CircularDependencyError struct {
	Path []string
}

func (e *CircularDependencyError) Error() string {
	return "Circular dependency detected: " + dag.FormatPath(e.Path)
}

// UnresolvedReference is a component reference no definition matched.
type UnresolvedReference struct {
	ID     string
	Parent string
	// Candidates lists the definitions an ambiguous fallback match found.
	Candidates []string
}

// Warning renders the reference as a report line.
func (u UnresolvedReference) Warning() string {
	if len(u.Candidates) > 0 {
		return fmt.Sprintf("Unresolved component '%s' in '%s': ambiguous match %v", u.ID, u.Parent, u.Candidates)
	}
	return fmt.Sprintf("Unresolved component '%s' in '%s'", u.ID, u.Parent)
}
