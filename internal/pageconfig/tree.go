package pageconfig

import (
	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

// RenderNode is one node of the resolved render tree. The same definition
// may appear in several sibling branches; along one root-to-node path a name
// never repeats without the repeat being flagged Circular.
type RenderNode struct {
	EventType string `json:"eventType" yaml:"eventType"`
	// ID is the component id this node was referenced by. It equals
	// EventType for the root.
	ID       string `json:"id" yaml:"id"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	Container string      `json:"container,omitempty" yaml:"container,omitempty"`
	Position  value.Value `json:"position,omitzero" yaml:"position,omitempty"`
	Config    value.Value `json:"config,omitzero" yaml:"config,omitempty"`

	Children     []*RenderNode `json:"children,omitempty" yaml:"children,omitempty"`
	FieldCount   int           `json:"fieldCount" yaml:"fieldCount"`
	HasActions   bool          `json:"hasActions" yaml:"hasActions"`
	HasWorkflows bool          `json:"hasWorkflows" yaml:"hasWorkflows"`

	Circular   bool `json:"circular,omitempty" yaml:"circular,omitempty"`
	Missing    bool `json:"missing,omitempty" yaml:"missing,omitempty"`
	Unresolved bool `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
}

// Flagged reports whether the node is a circular, missing or unresolved
// placeholder.
func (n *RenderNode) Flagged() bool {
	return n.Circular || n.Missing || n.Unresolved
}

// Depth returns the number of levels in the subtree rooted at n.
func (n *RenderNode) Depth() int {
	if n == nil {
		return 0
	}
	deepest := 0
	for _, c := range n.Children {
		if d := c.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// Walk visits n and its descendants depth-first, pre-order.
func (n *RenderNode) Walk(fn func(node *RenderNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// BuildRenderTree expands primary depth-first. The visited set is scoped to
// the current path: it is cleared on backtrack, so a definition shared by
// two branches is expanded in both, while re-entering an ancestor yields a
// circular leaf. A missing primary is the only error.
func BuildRenderTree(defs map[string]*model.Definition, primary string, cm ComponentMap) (*RenderNode, error) {
	root, _, err := buildRenderTree(defs, primary, cm)
	return root, err
}

func buildRenderTree(defs map[string]*model.Definition, primary string, cm ComponentMap) (*RenderNode, [][]string, error) {
	if _, ok := defs[primary]; !ok {
		return nil, nil, &MissingPrimaryError{Name: primary}
	}
	b := &treeBuilder{defs: defs, cm: cm, onPath: make(map[string]bool)}
	root := b.expand(primary, ResolvedRef{ID: primary, EventType: primary})
	return root, b.cycles, nil
}

type treeBuilder struct {
	defs   map[string]*model.Definition
	cm     ComponentMap
	onPath map[string]bool
	path   []string
	cycles [][]string
}

func (b *treeBuilder) expand(name string, ref ResolvedRef) *RenderNode {
	node := &RenderNode{
		EventType: name,
		ID:        ref.ID,
		Container: ref.Container,
		Position:  ref.Position,
	}

	if b.onPath[name] {
		node.Circular = true
		b.cycles = append(b.cycles, append(append([]string{}, b.path[indexOf(b.path, name):]...), name))
		return node
	}

	def, ok := b.defs[name]
	if !ok {
		node.Missing = true
		return node
	}

	node.Type = def.Type
	node.Title = def.Title
	node.Category = def.Category
	node.Config = def.Raw
	node.FieldCount = def.FieldCount()
	node.HasActions = def.HasActions()
	node.HasWorkflows = def.HasWorkflows()

	b.onPath[name] = true
	b.path = append(b.path, name)
	for _, child := range b.cm[name] {
		if child.Unresolved {
			node.Children = append(node.Children, &RenderNode{
				EventType:  child.ID,
				ID:         child.ID,
				Container:  child.Container,
				Position:   child.Position,
				Unresolved: true,
			})
			continue
		}
		node.Children = append(node.Children, b.expand(child.EventType, child))
	}
	b.path = b.path[:len(b.path)-1]
	delete(b.onPath, name)

	return node
}

func indexOf(path []string, name string) int {
	for i, p := range path {
		if p == name {
			return i
		}
	}
	return 0
}
