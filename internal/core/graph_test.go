package core

import (
	"context"
	"errors"
	"slices"
	"testing"

	"ohana/pkg/domain"
)

func TestShortestPathScenario(t *testing.T) {
	ctx := context.Background()
	graph := mustBuild(t, momoaCravalho()).Graph()

	path, err := graph.ShortestPath(ctx, 1, 3)
	if err != nil {
		t.Fatalf("path 1->3: %v", err)
	}
	if !slices.Equal(path, []int64{1, 3}) {
		t.Fatalf("expected [1 3], got %v", path)
	}

	if _, err := graph.ShortestPath(ctx, 1, 2); !errors.Is(err, domain.ErrNotFound) || !errors.Is(err, domain.ErrNoPath) {
		t.Fatalf("expected no path between families, got %v", err)
	}
}

func TestShortestPathSelf(t *testing.T) {
	graph := mustBuild(t, extendedFamily()).Graph()
	for _, id := range []int64{10, 14, 16} {
		path, err := graph.ShortestPath(context.Background(), id, id)
		if err != nil {
			t.Fatalf("self path %d: %v", id, err)
		}
		if !slices.Equal(path, []int64{id}) {
			t.Fatalf("expected [%d], got %v", id, path)
		}
	}
}

func TestShortestPathUnknownPerson(t *testing.T) {
	graph := mustBuild(t, extendedFamily()).Graph()
	for _, pair := range [][2]int64{{10, 99}, {99, 10}, {99, 99}} {
		_, err := graph.ShortestPath(context.Background(), pair[0], pair[1])
		if !errors.Is(err, domain.ErrUnknownPerson) || !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("%v: expected unknown person, got %v", pair, err)
		}
		if errors.Is(err, domain.ErrNoPath) {
			t.Fatalf("%v: unknown person must not report no path", pair)
		}
	}
}

func TestShortestPathTieBreaksOnLowestID(t *testing.T) {
	graph := mustBuild(t, extendedFamily()).Graph()
	path, err := graph.ShortestPath(context.Background(), 14, 15)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	// Cousins meet through either grandparent; 10 sorts first.
	if !slices.Equal(path, []int64{14, 12, 10, 13, 15}) {
		t.Fatalf("unexpected path %v", path)
	}
}

// hopDistances computes reference distances from src by frontier expansion.
func hopDistances(g *RelationshipGraph, src int64) map[int64]int {
	dist := map[int64]int{src: 0}
	frontier := []int64{src}
	for depth := 1; len(frontier) > 0; depth++ {
		var next []int64
		for _, id := range frontier {
			for _, n := range g.Neighbors(id) {
				if _, ok := dist[n]; !ok {
					dist[n] = depth
					next = append(next, n)
				}
			}
		}
		frontier = next
	}
	return dist
}

func TestShortestPathIsMinimalAndSymmetricInLength(t *testing.T) {
	ctx := context.Background()
	snap := mustBuild(t, extendedFamily())
	graph := snap.Graph()
	people := snap.Store().PersonIDs()

	for _, a := range people {
		dist := hopDistances(graph, a)
		for _, b := range people {
			forward, err := graph.ShortestPath(ctx, a, b)
			want, reachable := dist[b]
			if !reachable {
				if !errors.Is(err, domain.ErrNoPath) {
					t.Fatalf("%d->%d: expected no path, got %v (%v)", a, b, forward, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("%d->%d: %v", a, b, err)
			}
			if len(forward)-1 != want {
				t.Fatalf("%d->%d: expected %d hops, got path %v", a, b, want, forward)
			}
			if forward[0] != a || forward[len(forward)-1] != b {
				t.Fatalf("%d->%d: path endpoints wrong: %v", a, b, forward)
			}
			for i := 1; i < len(forward); i++ {
				if !slices.Contains(graph.Neighbors(forward[i-1]), forward[i]) {
					t.Fatalf("%d->%d: %d and %d are not related", a, b, forward[i-1], forward[i])
				}
			}
			backward, err := graph.ShortestPath(ctx, b, a)
			if err != nil {
				t.Fatalf("%d->%d: %v", b, a, err)
			}
			if len(backward) != len(forward) {
				t.Fatalf("asymmetric lengths: %v vs %v", forward, backward)
			}
		}
	}
}

func TestShortestPathHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	graph := mustBuild(t, extendedFamily()).Graph()
	if _, err := graph.ShortestPath(ctx, 14, 15); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestGraphCountsAndNeighbours(t *testing.T) {
	graph := mustBuild(t, extendedFamily()).Graph()
	if graph.NodeCount() != 7 {
		t.Fatalf("expected every person as a node, got %d", graph.NodeCount())
	}
	if graph.EdgeCount() != 6 {
		t.Fatalf("expected 6 parent/child edges, got %d", graph.EdgeCount())
	}
	if got := graph.Neighbors(10); !slices.Equal(got, []int64{12, 13}) {
		t.Fatalf("unexpected neighbours of 10: %v", got)
	}
	if got := graph.Neighbors(16); len(got) != 0 {
		t.Fatalf("expected isolated node, got %v", got)
	}
	if !graph.Has(16) || graph.Has(99) {
		t.Fatalf("unexpected membership")
	}
}
