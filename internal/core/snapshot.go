package core

import (
	"fmt"
	"time"

	"ohana/pkg/domain"
)

// Snapshot bundles the entity store with the graph and index derived from it.
// Build returns it fully constructed and nothing mutates it afterwards, so a
// *Snapshot may be shared by any number of concurrent queries.
type Snapshot struct {
	store   *EntityStore
	graph   *RelationshipGraph
	index   *SearchIndex
	builtAt time.Time
}

// SnapshotStats summarises a built snapshot.
type SnapshotStats struct {
	People       int       `json:"people"`
	Locations    int       `json:"locations"`
	Edges        int       `json:"edges"`
	PersonTokens int       `json:"person_tokens"`
	PlaceTokens  int       `json:"place_tokens"`
	BuiltAt      time.Time `json:"built_at"`
}

// Build validates ds, repairs one-sided parent/child links, and derives the
// relationship graph and search index. Any defect aborts the build with a
// *BuildError listing every problem found.
func Build(ds Dataset) (*Snapshot, error) {
	people, locations, problems := checkRecords(ds)
	repaired, lineageProblems := checkLineageIntegrity(people)
	problems = append(problems, lineageProblems...)
	problems = append(problems, checkPlaceReferences(people, locations)...)
	if len(problems) > 0 {
		return nil, &BuildError{Problems: problems}
	}

	store := newEntityStore()
	index := newSearchIndex()
	ordered := make([]Person, 0, len(repaired))
	for _, id := range sortedKeys(repaired) {
		p := repaired[id]
		if p.Sex == "" {
			p.Sex = domain.SexUnknown
		}
		if err := store.addPerson(p); err != nil {
			return nil, fmt.Errorf("store person: %w", err)
		}
		index.IndexPerson(p)
		ordered = append(ordered, p)
	}
	for _, id := range sortedKeys(locations) {
		l := locations[id]
		if err := store.addLocation(l); err != nil {
			return nil, fmt.Errorf("store location: %w", err)
		}
		index.IndexLocation(l)
	}
	store.seal()
	index.seal()

	return &Snapshot{
		store:   store,
		graph:   buildRelationshipGraph(ordered),
		index:   index,
		builtAt: time.Now().UTC(),
	}, nil
}

// EmptySnapshot returns a snapshot with no records.
func EmptySnapshot() *Snapshot {
	snap, _ := Build(Dataset{})
	return snap
}

// Store exposes the entity store.
func (s *Snapshot) Store() *EntityStore { return s.store }

// Graph exposes the relationship graph.
func (s *Snapshot) Graph() *RelationshipGraph { return s.graph }

// Index exposes the search index.
func (s *Snapshot) Index() *SearchIndex { return s.index }

// Stats reports record, edge and vocabulary counts.
func (s *Snapshot) Stats() SnapshotStats {
	personTokens, placeTokens := s.index.TokenCounts()
	return SnapshotStats{
		People:       s.store.PeopleCount(),
		Locations:    s.store.LocationCount(),
		Edges:        s.graph.EdgeCount(),
		PersonTokens: personTokens,
		PlaceTokens:  placeTokens,
		BuiltAt:      s.builtAt,
	}
}
