package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ohana/internal/adapters/query"
	"ohana/internal/core"
	"ohana/pkg/domain"
)

func name(first, last string) []domain.Name {
	return []domain.Name{{First: first, Last: last}}
}

// threeGenerations is two grandparents, their two children, and one
// grandchild per child, plus an unrelated person. Only the downward links
// are recorded; the build repairs the parent side.
func threeGenerations() domain.Dataset {
	return domain.Dataset{
		People: []domain.Person{
			{ID: 1, Names: name("Kekoa", "Akana"), Children: []int64{3, 4}},
			{ID: 2, Names: name("Leilani", "Akana"), Children: []int64{3, 4}},
			{ID: 3, Names: name("Nalu", "Akana"), Children: []int64{5}},
			{ID: 4, Names: name("Iolana", "Kealoha"), Children: []int64{6}},
			{ID: 5, Names: name("Makoa", "Akana")},
			{ID: 6, Names: name("Kai", "Kealoha")},
			{ID: 7, Names: name("Pua", "Mahoe")},
		},
	}
}

type pathBody struct {
	Path   []domain.Person `json:"path"`
	Reason string          `json:"reason"`
}

func TestIntegrationRelationshipPaths(t *testing.T) {
	ctx := context.Background()
	store := storeVariants()[0].open(t)
	if err := store.Save(ctx, threeGenerations()); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap, err := core.LoadSnapshot(ctx, store)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	srv := httptest.NewServer(query.NewHandler(core.NewService(snap), nil))
	defer srv.Close()

	cases := []struct {
		name   string
		url    string
		want   []int64
		reason string
	}{
		{name: "cousins through first grandparent", url: "/api/v1/people/5/path/6", want: []int64{5, 3, 1, 4, 6}},
		{name: "reverse direction", url: "/api/v1/people/6/path/5", want: []int64{6, 4, 1, 3, 5}},
		{name: "grandparent", url: "/api/v1/people/2/path/5", want: []int64{2, 3, 5}},
		{name: "siblings via lower parent id", url: "/api/v1/people/3/path/4", want: []int64{3, 1, 4}},
		{name: "self", url: "/api/v1/people/4/path/4", want: []int64{4}},
		{name: "unrelated", url: "/api/v1/people/7/path/1", want: []int64{}, reason: "no path"},
		{name: "unknown", url: "/api/v1/people/1/path/99", want: []int64{}, reason: "unknown person"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tc.url)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status %d", resp.StatusCode)
			}
			var body pathBody
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Reason != tc.reason {
				t.Fatalf("reason %q want %q", body.Reason, tc.reason)
			}
			got := make([]int64, len(body.Path))
			for i, p := range body.Path {
				got[i] = p.ID
			}
			if len(got) != len(tc.want) {
				t.Fatalf("path %v want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("path %v want %v", got, tc.want)
				}
			}
		})
	}
}

func TestIntegrationRepairedParentsAreServed(t *testing.T) {
	ctx := context.Background()
	snap, err := core.Build(threeGenerations())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	svc := core.NewService(snap)
	p, err := svc.GetPerson(ctx, 5)
	if err != nil {
		t.Fatalf("GetPerson: %v", err)
	}
	if len(p.Parents) != 1 || p.Parents[0] != 3 {
		t.Fatalf("expected repaired parent link, got %v", p.Parents)
	}
	kin, err := svc.SearchPeople(ctx, "akana")
	if err != nil {
		t.Fatalf("SearchPeople: %v", err)
	}
	if len(kin) != 4 {
		t.Fatalf("expected four Akana, got %d", len(kin))
	}
}
