package core

import (
	"testing"

	"ohana/pkg/domain"
)

func person(id int64, first, last string, parents ...int64) Person {
	return Person{ID: id, Names: []Name{{First: first, Last: last}}, Parents: parents}
}

// momoaCravalho is the two-family population with parents recorded only on
// the child side.
func momoaCravalho() Dataset {
	return Dataset{People: []Person{
		person(1, "Jason", "Momoa", 3),
		person(3, "Mommy", "Momoa"),
		person(2, "Aulii", "Cravalho", 4),
		person(4, "Mommy", "Cravalho"),
	}}
}

// extendedFamily is three generations plus one unrelated person:
//
//	10 + 11 -> 12, 13
//	12 -> 14
//	13 -> 15
//	16 (isolated)
func extendedFamily() Dataset {
	return Dataset{People: []Person{
		person(10, "Kekoa", "Kahale"),
		person(11, "Leilani", "Kahale"),
		person(12, "Makoa", "Kahale", 10, 11),
		person(13, "Nalani", "Kahale", 10, 11),
		person(14, "Ikaika", "Kahale", 12),
		person(15, "Kai", "Palakiko", 13),
		person(16, "Noelani", "Akana"),
	}}
}

func mustBuild(t *testing.T, ds Dataset) *Snapshot {
	t.Helper()
	snap, err := Build(ds)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return snap
}

func personIDs(people []Person) []int64 {
	out := make([]int64, 0, len(people))
	for _, p := range people {
		out = append(out, p.ID)
	}
	return out
}

func locationIDs(locations []Location) []int64 {
	out := make([]int64, 0, len(locations))
	for _, l := range locations {
		out = append(out, l.ID)
	}
	return out
}

func locationType(t domain.LocationType) *domain.LocationType { return &t }
