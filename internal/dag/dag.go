package dag

import (
	"fmt"
	"sort"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[int64]*vertex),
	}
}

// AddNode adds a vertex for id. If it already exists, the function does nothing.
func (g *Graph) AddNode(id int64) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &vertex{
		id:         id,
		deps:       make(map[int64]int),
		dependents: make(map[int64]int),
	}
}

// RemoveNode deletes the vertex for id together with every edge touching it.
func (g *Graph) RemoveNode(id int64) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	v, ok := g.nodes[id]
	if !ok {
		return
	}
	for dep := range v.deps {
		delete(g.nodes[dep].dependents, id)
	}
	for dependent := range v.dependents {
		delete(g.nodes[dependent].deps, id)
	}
	delete(g.nodes, id)
}

// AddEdge records one link from `fromID` to `toID`. An error is returned if
// either node does not exist or if the edge would create a self-reference.
func (g *Graph) AddEdge(fromID, toID int64) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %d -> %d", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	from, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %d", fromID)
	}
	to, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %d", toID)
	}

	to.deps[fromID]++
	from.dependents[toID]++
	return nil
}

// RemoveEdge drops one link from `fromID` to `toID`. The edge disappears once
// its last link is gone.
func (g *Graph) RemoveEdge(fromID, toID int64) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	from, okFrom := g.nodes[fromID]
	to, okTo := g.nodes[toID]
	if !okFrom || !okTo || from.dependents[toID] == 0 {
		return
	}

	from.dependents[toID]--
	to.deps[fromID]--
	if from.dependents[toID] == 0 {
		delete(from.dependents, toID)
		delete(to.deps, fromID)
	}
}

// Dependencies returns the sorted ids of the nodes linked into id.
func (g *Graph) Dependencies(id int64) ([]int64, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	v, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %d", id)
	}
	return sortedKeys(v.deps), nil
}

// Dependents returns the sorted ids of the nodes id links into.
func (g *Graph) Dependents(id int64) ([]int64, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	v, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %d", id)
	}
	return sortedKeys(v.dependents), nil
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// if a cycle is found, naming the first node involved in the detected cycle.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Classic depth-first search with three sets of vertices:
	// permanent: fully visited and not part of a cycle.
	// temporary: on the recursion stack of the current traversal.
	// unvisited: all others.
	permanent := make(map[int64]bool)
	temporary := make(map[int64]bool)

	var visit func(id int64) error
	visit = func(id int64) error {
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return fmt.Errorf("cycle detected involving node %d", id)
		}

		temporary[id] = true
		for _, dependent := range sortedKeys(g.nodes[id].dependents) {
			if err := visit(dependent); err != nil {
				return err
			}
		}
		delete(temporary, id)
		permanent[id] = true
		return nil
	}

	for _, id := range g.sortedIDs() {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// TopologicalOrder returns every node id such that each node comes after all
// of its dependencies. Ties are broken by ascending id, so the order is stable.
func (g *Graph) TopologicalOrder() ([]int64, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	remaining := make(map[int64]int, len(g.nodes))
	var ready []int64
	for id, v := range g.nodes {
		remaining[id] = len(v.deps)
		if len(v.deps) == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]int64, 0, len(g.nodes))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for dependent := range g.nodes[id].dependents {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, fmt.Errorf("graph has a cycle; ordered %d of %d nodes", len(order), len(g.nodes))
	}
	return order, nil
}

func (g *Graph) sortedIDs() []int64 {
	ids := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedKeys(m map[int64]int) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
