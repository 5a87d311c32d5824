package dag

import (
	"fmt"
	"sort"
	"strings"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.addNodeLocked(id)
}

func (g *Graph) addNodeLocked(id string) *node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.nodes[id] = n
	return n
}

// AddEdge records that fromID depends on toID. Both nodes must exist.
// Self-edges are allowed; they form a cycle of length one.
func (g *Graph) AddEdge(fromID, toID string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	fromNode.deps[toID] = toNode
	toNode.dependents[fromID] = fromNode

	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// Dependencies returns the sorted IDs of the nodes the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedIDs(n.deps), nil
}

// Dependents returns the sorted IDs of the nodes that depend on the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedIDs(n.dependents), nil
}

// Reachable returns the set of node IDs reachable from id, including id.
func (g *Graph) Reachable(id string) map[string]bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	seen := make(map[string]bool)
	start, ok := g.nodes[id]
	if !ok {
		return seen
	}
	stack := []*node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n.id] {
			continue
		}
		seen[n.id] = true
		for _, dep := range n.deps {
			stack = append(stack, dep)
		}
	}
	return seen
}

// FindCycles returns every elementary cycle discovered by a depth-first
// search, each as a closed path such as [a b a]. Nodes and edges are visited
// in sorted order so results are deterministic. A node already proven
// acyclic is never re-entered, so the search is linear and reports at most
// one cycle per back edge.
func (g *Graph) FindCycles() [][]string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// permanent: nodes that have been fully visited.
	// temporary: nodes currently in the recursion stack for the current traversal.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)
	var path []string
	var cycles [][]string

	var visit func(n *node)
	visit = func(n *node) {
		temporary[n.id] = true
		path = append(path, n.id)

		for _, depID := range sortedIDs(n.deps) {
			if temporary[depID] {
				// Back edge: the cycle is the path suffix starting at depID.
				start := indexOf(path, depID)
				cycle := append(append([]string{}, path[start:]...), depID)
				cycles = append(cycles, cycle)
				continue
			}
			if !permanent[depID] {
				visit(n.deps[depID])
			}
		}

		path = path[:len(path)-1]
		delete(temporary, n.id)
		permanent[n.id] = true
	}

	for _, id := range sortedIDs(g.nodes) {
		if !permanent[id] {
			visit(g.nodes[id])
		}
	}
	return cycles
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// describing the first cycle found.
func (g *Graph) DetectCycles() error {
	cycles := g.FindCycles()
	if len(cycles) == 0 {
		return nil
	}
	return fmt.Errorf("cycle detected: %s", FormatPath(cycles[0]))
}

// FormatPath renders a path as "a → b → a".
func FormatPath(path []string) string {
	return strings.Join(path, " → ")
}

func sortedIDs(m map[string]*node) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func indexOf(path []string, id string) int {
	for i, p := range path {
		if p == id {
			return i
		}
	}
	return 0
}
