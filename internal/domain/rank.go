package domain

import (
	"cmp"
	"maps"
	"slices"
)

// SortOrder selects the direction in which RankCandidates orders values.
type SortOrder int

const (
	// Descending places the highest value first.
	Descending SortOrder = iota
	// Ascending places the lowest value first.
	Ascending
)

// String implements fmt.Stringer.
func (o SortOrder) String() string {
	if o == Ascending {
		return "ascending"
	}
	return "descending"
}

// Rank groups the candidates that share one value.
type Rank struct {
	// Value is the value every candidate in the group shares.
	Value int `json:"value"`

	// Candidates holds the group's members, sorted by name.
	Candidates []Candidate `json:"candidates"`
}

// Size returns the number of candidates in the rank.
func (r Rank) Size() int { return len(r.Candidates) }

// RankCandidates groups candidates by value and orders the groups by
// order. Every candidate in values appears in exactly one Rank. Ties are
// kept together; resolving them is the caller's job.
func RankCandidates(values map[Candidate]int, order SortOrder) []Rank {
	groups := make(map[int][]Candidate)
	for c, v := range values {
		groups[v] = append(groups[v], c)
	}

	keys := slices.Collect(maps.Keys(groups))
	slices.SortFunc(keys, func(a, b int) int {
		if order == Ascending {
			return cmp.Compare(a, b)
		}
		return cmp.Compare(b, a)
	})

	ranks := make([]Rank, 0, len(keys))
	for _, k := range keys {
		members := groups[k]
		slices.Sort(members)
		ranks = append(ranks, Rank{Value: k, Candidates: members})
	}
	return ranks
}

// RankBy ranks candidates by the value fn assigns each of them.
func RankBy(candidates []Candidate, order SortOrder, fn func(Candidate) int) []Rank {
	values := make(map[Candidate]int, len(candidates))
	for _, c := range candidates {
		values[c] = fn(c)
	}
	return RankCandidates(values, order)
}
