package pageconfig

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/pagegridgo/internal/ctxlog"
	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

// MatchPolicy selects how a component id is matched to a definition name.
type MatchPolicy string

const (
	// MatchExact accepts only a definition whose name equals the id.
	MatchExact MatchPolicy = "exact"
	// MatchContains falls back, when no exact match exists, to the single
	// definition whose name contains the id case-insensitively. More than one
	// candidate leaves the reference unresolved.
	MatchContains MatchPolicy = "contains"
)

// ParseMatchPolicy validates a policy name. Empty means MatchExact.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch MatchPolicy(strings.ToLower(s)) {
	case "", MatchExact:
		return MatchExact, nil
	case MatchContains:
		return MatchContains, nil
	}
	return "", fmt.Errorf("invalid match policy %q: must be '%s' or '%s'", s, MatchExact, MatchContains)
}

// ResolvedRef is a component reference after resolution.
type ResolvedRef struct {
	ID         string      `json:"id" yaml:"id"`
	EventType  string      `json:"eventType,omitempty" yaml:"eventType,omitempty"`
	Container  string      `json:"container,omitempty" yaml:"container,omitempty"`
	Position   value.Value `json:"position,omitzero" yaml:"position,omitempty"`
	Unresolved bool        `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	Candidates []string    `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}

// ComponentMap maps a container name to its resolved references, in
// declared order.
type ComponentMap map[string][]ResolvedRef

// Resolver resolves ComponentRefs against a definition set.
type Resolver struct {
	Policy MatchPolicy
}

// Resolve resolves every reference of every container. Unmatched references
// become unresolved entries and are returned for reporting; they are never
// errors.
func (r Resolver) Resolve(ctx context.Context, defs map[string]*model.Definition, deps map[string][]model.ComponentRef) (ComponentMap, []UnresolvedReference) {
	logger := ctxlog.FromContext(ctx).With("component", "resolver", "policy", string(r.policy()))

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	parents := make([]string, 0, len(deps))
	for parent := range deps {
		parents = append(parents, parent)
	}
	sort.Strings(parents)

	cm := make(ComponentMap, len(deps))
	var unresolved []UnresolvedReference
	for _, parent := range parents {
		refs := deps[parent]
		resolved := make([]ResolvedRef, 0, len(refs))
		for _, ref := range refs {
			rr := ResolvedRef{ID: ref.ID, Container: ref.Container, Position: ref.Position}
			match, candidates := r.match(ref.ID, defs, names)
			if match == "" {
				rr.Unresolved = true
				rr.Candidates = candidates
				u := UnresolvedReference{ID: ref.ID, Parent: parent, Candidates: candidates}
				unresolved = append(unresolved, u)
				logger.Warn(u.Warning())
			} else {
				rr.EventType = match
				if match != ref.ID {
					logger.Debug("Resolved component by name containment", "id", ref.ID, "event_type", match)
				}
			}
			resolved = append(resolved, rr)
		}
		cm[parent] = resolved
	}
	return cm, unresolved
}

func (r Resolver) policy() MatchPolicy {
	if r.Policy == "" {
		return MatchExact
	}
	return r.Policy
}

// match returns the matched name, or "" plus any ambiguous candidates.
func (r Resolver) match(id string, defs map[string]*model.Definition, names []string) (string, []string) {
	if _, ok := defs[id]; ok {
		return id, nil
	}
	if r.policy() != MatchContains || id == "" {
		return "", nil
	}

	needle := strings.ToLower(id)
	var candidates []string
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), needle) {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	return "", candidates
}
