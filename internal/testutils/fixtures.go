// Package testutils provides utilities for testing, including fixture
// builders and seeded election generators. These components are intended
// for internal use within the project's test suites and are not part of the
// public API.
package testutils

import (
	"fmt"

	"github.com/ahrav/go-star/internal/domain"
)

// MatrixElection builds an election from a score matrix: one row per
// ballot, one column per candidate. Voters are named "Voter n".
func MatrixElection(seats int, candidates []domain.Candidate, rows ...[]int) *domain.Election {
	b := domain.NewElectionBuilder().SetSeatCount(seats).AddCandidates(candidates...)
	for i, row := range rows {
		if len(row) != len(candidates) {
			panic(fmt.Sprintf("row %d has %d scores for %d candidates", i, len(row), len(candidates)))
		}
		votes := make([]domain.Vote, len(row))
		for j, s := range row {
			votes[j] = domain.Vote{Candidate: candidates[j], Score: s}
		}
		name := fmt.Sprintf("Voter %d", i+1)
		b.AddBallot(domain.Voter{Name: name, Anonym: name}, votes...)
	}
	return b.Build()
}

// Candidates converts names to candidates.
func Candidates(names ...string) []domain.Candidate {
	out := make([]domain.Candidate, len(names))
	for i, n := range names {
		out[i] = domain.Candidate(n)
	}
	return out
}

// ScriptedRandom is a ports.RandomSource that replays fixed draws. Each
// call to IntN returns the next scripted value modulo n and records n.
type ScriptedRandom struct {
	Values []int
	// Calls records the n passed to each IntN call.
	Calls []int
}

// IntN returns the next scripted value modulo n. It returns 0 once the
// script is exhausted.
func (s *ScriptedRandom) IntN(n int) int {
	i := len(s.Calls)
	s.Calls = append(s.Calls, n)
	if i >= len(s.Values) {
		return 0
	}
	return s.Values[i] % n
}
