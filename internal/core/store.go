package core

import (
	"fmt"
	"slices"
)

// EntityStore owns the canonical Person and Location records. It is filled
// once by Build and is read-only afterwards, so lookups take no locks.
type EntityStore struct {
	people      map[int64]Person
	peopleOrder []int64
	locations   map[int64]Location
	placeOrder  []int64
}

func newEntityStore() *EntityStore {
	return &EntityStore{
		people:    make(map[int64]Person),
		locations: make(map[int64]Location),
	}
}

func clonePerson(p Person) Person {
	cp := p
	cp.Names = slices.Clone(p.Names)
	cp.Birth = cloneLifeEvent(p.Birth)
	cp.Death = cloneLifeEvent(p.Death)
	if p.Events != nil {
		cp.Events = make([]LifeEvent, len(p.Events))
		for i, ev := range p.Events {
			cp.Events[i] = *cloneLifeEvent(&ev)
		}
	}
	cp.Parents = slices.Clone(p.Parents)
	cp.Children = slices.Clone(p.Children)
	cp.Groups = slices.Clone(p.Groups)
	cp.Schools = slices.Clone(p.Schools)
	cp.Notes = slices.Clone(p.Notes)
	cp.Links = slices.Clone(p.Links)
	return cp
}

func cloneLifeEvent(ev *LifeEvent) *LifeEvent {
	if ev == nil {
		return nil
	}
	cp := *ev
	if ev.PlaceID != nil {
		id := *ev.PlaceID
		cp.PlaceID = &id
	}
	cp.Notes = slices.Clone(ev.Notes)
	cp.Citations = slices.Clone(ev.Citations)
	return &cp
}

func cloneLocation(l Location) Location {
	cp := l
	if l.Address != nil {
		addr := *l.Address
		addr.Lines = slices.Clone(l.Address.Lines)
		cp.Address = &addr
	}
	if l.Type != nil {
		t := *l.Type
		cp.Type = &t
	}
	cp.Notes = slices.Clone(l.Notes)
	return cp
}

func (s *EntityStore) addPerson(p Person) error {
	if _, exists := s.people[p.ID]; exists {
		return fmt.Errorf("person %d already exists", p.ID)
	}
	s.people[p.ID] = clonePerson(p)
	s.peopleOrder = append(s.peopleOrder, p.ID)
	return nil
}

func (s *EntityStore) addLocation(l Location) error {
	if _, exists := s.locations[l.ID]; exists {
		return fmt.Errorf("location %d already exists", l.ID)
	}
	s.locations[l.ID] = cloneLocation(l)
	s.placeOrder = append(s.placeOrder, l.ID)
	return nil
}

// seal fixes the listing order. Records are listed by ascending id regardless
// of the order the loader produced them in.
func (s *EntityStore) seal() {
	slices.Sort(s.peopleOrder)
	slices.Sort(s.placeOrder)
}

// Person returns a copy of the person with the given id.
func (s *EntityStore) Person(id int64) (Person, bool) {
	p, ok := s.people[id]
	if !ok {
		return Person{}, false
	}
	return clonePerson(p), true
}

// Location returns a copy of the location with the given id.
func (s *EntityStore) Location(id int64) (Location, bool) {
	l, ok := s.locations[id]
	if !ok {
		return Location{}, false
	}
	return cloneLocation(l), true
}

// People resolves ids in order, skipping any that are not stored.
func (s *EntityStore) People(ids []int64) []Person {
	out := make([]Person, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.people[id]; ok {
			out = append(out, clonePerson(p))
		}
	}
	return out
}

// Locations resolves ids in order, skipping any that are not stored.
func (s *EntityStore) Locations(ids []int64) []Location {
	out := make([]Location, 0, len(ids))
	for _, id := range ids {
		if l, ok := s.locations[id]; ok {
			out = append(out, cloneLocation(l))
		}
	}
	return out
}

// ListPeople returns up to limit people starting at offset, ordered by id.
// A negative limit returns every remaining record. An offset past the end
// yields an empty slice.
func (s *EntityStore) ListPeople(offset, limit int) []Person {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.peopleOrder) {
		return []Person{}
	}
	end := len(s.peopleOrder)
	if limit >= 0 && limit < end-offset {
		end = offset + limit
	}
	return s.People(s.peopleOrder[offset:end])
}

// PersonIDs returns every stored person id in ascending order.
func (s *EntityStore) PersonIDs() []int64 {
	return slices.Clone(s.peopleOrder)
}

// LocationIDs returns every stored location id in ascending order.
func (s *EntityStore) LocationIDs() []int64 {
	return slices.Clone(s.placeOrder)
}

// PeopleCount reports the population size.
func (s *EntityStore) PeopleCount() int { return len(s.peopleOrder) }

// LocationCount reports the number of stored places.
func (s *EntityStore) LocationCount() int { return len(s.placeOrder) }
