package core

import (
	"context"
	"slices"

	"ohana/pkg/domain"
)

// RelationshipGraph is an undirected, unweighted adjacency view over person
// ids. Parent and child links both become edges, so a path's hop count is its
// generational distance. The graph holds ids only; records stay in the store.
type RelationshipGraph struct {
	adj   map[int64][]int64
	edges int
}

// buildRelationshipGraph adds a node for every person, isolated or not, and an
// edge for every parent or child reference in either direction. Neighbour
// lists are deduplicated and sorted ascending, which fixes BFS visiting order.
func buildRelationshipGraph(people []Person) *RelationshipGraph {
	g := &RelationshipGraph{adj: make(map[int64][]int64, len(people))}
	for _, p := range people {
		if _, ok := g.adj[p.ID]; !ok {
			g.adj[p.ID] = nil
		}
		for _, parent := range p.Parents {
			g.link(p.ID, parent)
		}
		for _, child := range p.Children {
			g.link(p.ID, child)
		}
	}
	for id, neighbours := range g.adj {
		slices.Sort(neighbours)
		neighbours = slices.Compact(neighbours)
		g.adj[id] = neighbours
		g.edges += len(neighbours)
	}
	g.edges /= 2
	return g
}

func (g *RelationshipGraph) link(a, b int64) {
	if a == b {
		return
	}
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
}

// Has reports whether id is a node of the graph.
func (g *RelationshipGraph) Has(id int64) bool {
	_, ok := g.adj[id]
	return ok
}

// Neighbors returns the ids adjacent to id in ascending order.
func (g *RelationshipGraph) Neighbors(id int64) []int64 {
	return slices.Clone(g.adj[id])
}

// NodeCount reports the number of people in the graph.
func (g *RelationshipGraph) NodeCount() int { return len(g.adj) }

// EdgeCount reports the number of distinct parent/child links.
func (g *RelationshipGraph) EdgeCount() int { return g.edges }

// ShortestPath returns the ids on a minimum-hop path from `from` to `to`,
// both inclusive. Among equally short paths it returns the one BFS reaches
// first when neighbours are expanded in ascending id order, so results are
// reproducible. Unknown endpoints yield domain.ErrUnknownPerson and
// disconnected endpoints domain.ErrNoPath; both match domain.ErrNotFound.
func (g *RelationshipGraph) ShortestPath(ctx context.Context, from, to int64) ([]int64, error) {
	if !g.Has(from) || !g.Has(to) {
		return nil, domain.ErrUnknownPerson
	}
	if from == to {
		return []int64{from}, nil
	}

	parent := map[int64]int64{from: from}
	queue := []int64{from}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := queue[0]
		queue = queue[1:]

		for _, next := range g.adj[current] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = current
			if next == to {
				return reconstructPath(parent, from, to), nil
			}
			queue = append(queue, next)
		}
	}
	return nil, domain.ErrNoPath
}

func reconstructPath(parent map[int64]int64, from, to int64) []int64 {
	path := []int64{to}
	for node := to; node != from; {
		node = parent[node]
		path = append(path, node)
	}
	slices.Reverse(path)
	return path
}
