package core

import (
	"fmt"
	"slices"
	"strings"

	"ohana/pkg/domain"
)

// Problem is one defect found while building a snapshot.
type Problem struct {
	Rule     string     `json:"rule"`
	Entity   EntityType `json:"entity"`
	EntityID int64      `json:"entity_id"`
	Message  string     `json:"message"`
}

// BuildError aggregates every problem found in a dataset. Build reports them
// all at once so an operator can fix the dataset in one pass.
type BuildError struct {
	Problems []Problem
}

func (e *BuildError) Error() string {
	if len(e.Problems) == 1 {
		return "dataset invalid: " + e.Problems[0].Message
	}
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Message
	}
	return fmt.Sprintf("dataset invalid (%d problems): %s", len(e.Problems), strings.Join(msgs, "; "))
}

const (
	ruleRecordShape      = "record_shape"
	ruleUniqueIdentity   = "unique_identity"
	ruleLineageIntegrity = "lineage_integrity"
	rulePlaceReference   = "place_reference"
)

func lineageProblem(personID int64, format string, args ...any) Problem {
	return Problem{Rule: ruleLineageIntegrity, Entity: EntityPerson, EntityID: personID, Message: fmt.Sprintf(format, args...)}
}

// checkRecords validates record shapes and identifier uniqueness. It returns
// the records that passed, keyed by id, alongside the problems found.
func checkRecords(ds Dataset) (map[int64]Person, map[int64]Location, []Problem) {
	var problems []Problem
	people := make(map[int64]Person, len(ds.People))
	for _, p := range ds.People {
		if err := domain.ValidatePerson(p); err != nil {
			problems = append(problems, Problem{Rule: ruleRecordShape, Entity: EntityPerson, EntityID: p.ID, Message: fmt.Sprintf("person %d: %v", p.ID, err)})
			continue
		}
		if _, dup := people[p.ID]; dup {
			problems = append(problems, Problem{Rule: ruleUniqueIdentity, Entity: EntityPerson, EntityID: p.ID, Message: fmt.Sprintf("person %d defined more than once", p.ID)})
			continue
		}
		people[p.ID] = p
	}
	locations := make(map[int64]Location, len(ds.Locations))
	for _, l := range ds.Locations {
		if err := domain.ValidateLocation(l); err != nil {
			problems = append(problems, Problem{Rule: ruleRecordShape, Entity: EntityLocation, EntityID: l.ID, Message: fmt.Sprintf("location %d: %v", l.ID, err)})
			continue
		}
		if _, dup := locations[l.ID]; dup {
			problems = append(problems, Problem{Rule: ruleUniqueIdentity, Entity: EntityLocation, EntityID: l.ID, Message: fmt.Sprintf("location %d defined more than once", l.ID)})
			continue
		}
		locations[l.ID] = l
	}
	return people, locations, problems
}

// checkLineageIntegrity enforces parent/child constraints over the people
// index and returns the repaired records: after repair every parent lists the
// child and every child lists the parent, whichever side the input recorded.
func checkLineageIntegrity(people map[int64]Person) (map[int64]Person, []Problem) {
	var problems []Problem

	checkRefs := func(person Person, role string, refs []int64) {
		seen := make(map[int64]struct{}, len(refs))
		for _, ref := range refs {
			if ref == person.ID {
				problems = append(problems, lineageProblem(person.ID, "person %d references itself as a %s", person.ID, role))
				continue
			}
			if _, dup := seen[ref]; dup {
				problems = append(problems, lineageProblem(person.ID, "person %d lists %s %d multiple times", person.ID, role, ref))
				continue
			}
			seen[ref] = struct{}{}
			if _, ok := people[ref]; !ok {
				problems = append(problems, lineageProblem(person.ID, "person %d references missing %s %d", person.ID, role, ref))
			}
		}
	}

	parents := make(map[int64][]int64, len(people))
	children := make(map[int64][]int64, len(people))
	for _, id := range sortedKeys(people) {
		person := people[id]
		checkRefs(person, "parent", person.Parents)
		checkRefs(person, "child", person.Children)
		for _, parent := range person.Parents {
			if _, ok := people[parent]; ok && parent != person.ID {
				parents[person.ID] = append(parents[person.ID], parent)
				children[parent] = append(children[parent], person.ID)
			}
		}
		for _, child := range person.Children {
			if _, ok := people[child]; ok && child != person.ID {
				children[person.ID] = append(children[person.ID], child)
				parents[child] = append(parents[child], person.ID)
			}
		}
	}
	if len(problems) > 0 {
		return nil, problems
	}

	repaired := make(map[int64]Person, len(people))
	for id, person := range people {
		person.Parents = sortedUnique(parents[id])
		person.Children = sortedUnique(children[id])
		repaired[id] = person
	}
	for _, id := range ancestryCycle(repaired) {
		problems = append(problems, lineageProblem(id, "person %d is recorded as their own ancestor", id))
	}
	return repaired, problems
}

// ancestryCycle returns the ids on a parent-of cycle, or nil. A person cannot
// descend from themselves, so any cycle means the input confused two people.
func ancestryCycle(people map[int64]Person) []int64 {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[int64]int, len(people))
	ids := make([]int64, 0, len(people))
	for id := range people {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	type frame struct {
		id   int64
		next int
	}
	for _, root := range ids {
		if state[root] != unvisited {
			continue
		}
		stack := []frame{{id: root}}
		state[root] = active
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			parents := people[top.id].Parents
			if top.next == len(parents) {
				state[top.id] = done
				stack = stack[:len(stack)-1]
				continue
			}
			parent := parents[top.next]
			top.next++
			switch state[parent] {
			case active:
				cycle := []int64{parent}
				for i := len(stack) - 1; i >= 0 && stack[i].id != parent; i-- {
					cycle = append(cycle, stack[i].id)
				}
				slices.Sort(cycle)
				return cycle
			case unvisited:
				state[parent] = active
				stack = append(stack, frame{id: parent})
			}
		}
	}
	return nil
}

// checkPlaceReferences reports life events pointing at unknown locations.
func checkPlaceReferences(people map[int64]Person, locations map[int64]Location) []Problem {
	var problems []Problem
	check := func(personID int64, label string, ev *LifeEvent) {
		if ev == nil || ev.PlaceID == nil {
			return
		}
		if _, ok := locations[*ev.PlaceID]; !ok {
			problems = append(problems, Problem{
				Rule:     rulePlaceReference,
				Entity:   EntityPerson,
				EntityID: personID,
				Message:  fmt.Sprintf("person %d %s references missing location %d", personID, label, *ev.PlaceID),
			})
		}
	}
	for _, id := range sortedKeys(people) {
		p := people[id]
		check(id, "birth", p.Birth)
		check(id, "death", p.Death)
		for i := range p.Events {
			check(id, fmt.Sprintf("event %d", i), &p.Events[i])
		}
	}
	return problems
}

func sortedUnique(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
