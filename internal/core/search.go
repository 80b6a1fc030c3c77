package core

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Tokenize splits text on Unicode whitespace and case-folds each token. The
// same function is used for indexing and for queries so both sides agree.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	// A Caser keeps state between calls and must not be shared across goroutines.
	folder := cases.Fold()
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, folder.String(f))
	}
	return out
}

// tokenIndex maps folded tokens to the ids of the entities containing them.
type tokenIndex struct {
	postings map[string][]int64
	tokens   []string // sorted keys of postings, for prefix range scans
}

func newTokenIndex() *tokenIndex {
	return &tokenIndex{postings: make(map[string][]int64)}
}

func (ix *tokenIndex) add(id int64, texts ...string) {
	for _, text := range texts {
		for _, tok := range Tokenize(text) {
			ix.postings[tok] = append(ix.postings[tok], id)
		}
	}
}

func (ix *tokenIndex) seal() {
	ix.tokens = ix.tokens[:0]
	for tok, ids := range ix.postings {
		slices.Sort(ids)
		ix.postings[tok] = slices.Compact(ids)
		ix.tokens = append(ix.tokens, tok)
	}
	slices.Sort(ix.tokens)
}

// SearchHit is one ranked search result.
type SearchHit struct {
	ID    int64
	Score int // distinct query tokens that matched
}

// search ranks entities by how many distinct query tokens are equal to or a
// prefix of one of their indexed tokens. Ties are broken by ascending id.
func (ix *tokenIndex) search(text string) []SearchHit {
	query := Tokenize(text)
	if len(query) == 0 {
		return []SearchHit{}
	}
	slices.Sort(query)
	query = slices.Compact(query)

	scores := make(map[int64]int)
	for _, q := range query {
		matched := make(map[int64]struct{})
		start, _ := slices.BinarySearch(ix.tokens, q)
		for i := start; i < len(ix.tokens) && strings.HasPrefix(ix.tokens[i], q); i++ {
			for _, id := range ix.postings[ix.tokens[i]] {
				matched[id] = struct{}{}
			}
		}
		for id := range matched {
			scores[id]++
		}
	}

	hits := make([]SearchHit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, SearchHit{ID: id, Score: score})
	}
	slices.SortFunc(hits, func(a, b SearchHit) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return hits
}

// SearchIndex holds separate token indexes for people and places.
type SearchIndex struct {
	people *tokenIndex
	places *tokenIndex
}

func newSearchIndex() *SearchIndex {
	return &SearchIndex{people: newTokenIndex(), places: newTokenIndex()}
}

// IndexPerson adds every first, middle and last name part of p.
func (s *SearchIndex) IndexPerson(p Person) {
	for _, n := range p.Names {
		s.people.add(p.ID, n.First, n.Middle, n.Last)
	}
}

// IndexLocation adds the name and description of l.
func (s *SearchIndex) IndexLocation(l Location) {
	s.places.add(l.ID, l.Name, l.Description)
}

func (s *SearchIndex) seal() {
	s.people.seal()
	s.places.seal()
}

// SearchPeople returns ranked person hits for text. Blank text matches nothing.
func (s *SearchIndex) SearchPeople(text string) []SearchHit {
	return s.people.search(text)
}

// SearchPlaces returns ranked location hits for text. Blank text matches nothing.
func (s *SearchIndex) SearchPlaces(text string) []SearchHit {
	return s.places.search(text)
}

// TokenCounts reports the vocabulary size of the people and place indexes.
func (s *SearchIndex) TokenCounts() (people, places int) {
	return len(s.people.tokens), len(s.places.tokens)
}

func hitIDs(hits []SearchHit) []int64 {
	ids := make([]int64, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	return ids
}
