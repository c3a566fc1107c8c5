package dag

import "sync"

// Graph is the link topology of a pipeline: one vertex per node, one edge per
// pair of linked nodes. Several port links between the same two nodes share
// an edge, which is kept alive until the last of them is removed.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all vertices, keyed by node id.
	nodes map[int64]*vertex
}

// vertex is un-exported to enforce interaction with the graph via node ids.
type vertex struct {
	id int64
	// deps counts links from each upstream node (predecessors).
	deps map[int64]int
	// dependents counts links to each downstream node (successors).
	dependents map[int64]int
}
