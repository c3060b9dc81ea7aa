package domain

import (
	"slices"
)

// NarrowMode selects how HeadToHeadResults.Narrowed interprets its
// candidate list.
type NarrowMode int

const (
	// Inclusive keeps only the listed candidates.
	Inclusive NarrowMode = iota
	// Exclusive keeps every candidate except the listed ones.
	Exclusive
)

// headToHeadStats is the aggregate outcome for one candidate against every
// other candidate in the universe.
type headToHeadStats struct {
	wins   []Candidate
	losses []Candidate
	won    int
	lost   int
}

// HeadToHeadResults holds pairwise preference statistics for a set of
// candidates. For an ordered pair (A, B) the preference count is the number
// of ballots that scored A strictly higher than B; ballots scoring them
// equally count for neither.
//
// Win and loss sets reflect the aggregate outcome over all ballots: A beats
// B when more ballots prefer A to B than B to A.
//
// A HeadToHeadResults is read-only after construction and safe for
// concurrent reads.
type HeadToHeadResults struct {
	ballots    int
	candidates []Candidate
	prefs      map[Candidate]map[Candidate]int
	stats      map[Candidate]*headToHeadStats
}

// NewHeadToHeadResults computes pairwise statistics for every candidate pair
// in e.
func NewHeadToHeadResults(e *Election) *HeadToHeadResults {
	candidates := e.Candidates()
	prefs := make(map[Candidate]map[Candidate]int, len(candidates))
	for _, c := range candidates {
		prefs[c] = make(map[Candidate]int, len(candidates)-1)
	}

	for _, b := range e.ballots {
		for i, a := range candidates {
			sa := b.Score(a)
			for _, c := range candidates[i+1:] {
				sc := b.Score(c)
				switch {
				case sa > sc:
					prefs[a][c]++
				case sc > sa:
					prefs[c][a]++
				}
			}
		}
	}

	return newHeadToHeadResults(len(e.ballots), candidates, prefs)
}

// newHeadToHeadResults copies the pairwise counts for candidates out of
// prefs and derives the per-candidate aggregates.
func newHeadToHeadResults(ballots int, candidates []Candidate, prefs map[Candidate]map[Candidate]int) *HeadToHeadResults {
	h := &HeadToHeadResults{
		ballots:    ballots,
		candidates: slices.Clone(candidates),
		prefs:      make(map[Candidate]map[Candidate]int, len(candidates)),
		stats:      make(map[Candidate]*headToHeadStats, len(candidates)),
	}

	for _, a := range h.candidates {
		row := make(map[Candidate]int, len(h.candidates)-1)
		for _, b := range h.candidates {
			if a != b {
				row[b] = prefs[a][b]
			}
		}
		h.prefs[a] = row
	}

	for _, a := range h.candidates {
		s := &headToHeadStats{}
		for _, b := range h.candidates {
			if a == b {
				continue
			}
			ab, ba := h.prefs[a][b], h.prefs[b][a]
			s.won += ab
			s.lost += ba
			switch {
			case ab > ba:
				s.wins = append(s.wins, b)
			case ba > ab:
				s.losses = append(s.losses, b)
			}
		}
		h.stats[a] = s
	}

	return h
}

// Narrowed returns an independent HeadToHeadResults restricted to a subset
// of the current candidates. With Inclusive only the listed candidates are
// kept; with Exclusive all but the listed candidates are kept. Listed
// candidates unknown to h are ignored.
func (h *HeadToHeadResults) Narrowed(candidates []Candidate, mode NarrowMode) *HeadToHeadResults {
	keep := make([]Candidate, 0, len(h.candidates))
	for _, c := range h.candidates {
		listed := slices.Contains(candidates, c)
		if (mode == Inclusive) == listed {
			keep = append(keep, c)
		}
	}
	return newHeadToHeadResults(h.ballots, keep, h.prefs)
}

// Candidates returns the candidates covered by h.
func (h *HeadToHeadResults) Candidates() []Candidate { return slices.Clone(h.candidates) }

// BallotCount returns the number of ballots the statistics were built from.
func (h *HeadToHeadResults) BallotCount() int { return h.ballots }

// Wins returns the candidates c beats head-to-head.
func (h *HeadToHeadResults) Wins(c Candidate) []Candidate {
	if s, ok := h.stats[c]; ok {
		return slices.Clone(s.wins)
	}
	return nil
}

// Losses returns the candidates c loses to head-to-head.
func (h *HeadToHeadResults) Losses(c Candidate) []Candidate {
	if s, ok := h.stats[c]; ok {
		return slices.Clone(s.losses)
	}
	return nil
}

// Preferences returns the number of ballots scoring a strictly above b.
func (h *HeadToHeadResults) Preferences(a, b Candidate) int {
	return h.prefs[a][b]
}

// Ties returns the number of ballots scoring a and b equally.
func (h *HeadToHeadResults) Ties(a, b Candidate) int {
	if a == b || h.prefs[a] == nil || h.prefs[b] == nil {
		return 0
	}
	return h.ballots - h.prefs[a][b] - h.prefs[b][a]
}

// Margin returns Preferences(a, b) - Preferences(b, a).
func (h *HeadToHeadResults) Margin(a, b Candidate) int {
	return h.prefs[a][b] - h.prefs[b][a]
}

// Winner returns the candidate preferred head-to-head, or false on an
// exact tie.
func (h *HeadToHeadResults) Winner(a, b Candidate) (Candidate, bool) {
	switch m := h.Margin(a, b); {
	case m > 0:
		return a, true
	case m < 0:
		return b, true
	default:
		return "", false
	}
}

// PreferencesWon returns the preferences c collected against every other
// candidate in h.
func (h *HeadToHeadResults) PreferencesWon(c Candidate) int {
	if s, ok := h.stats[c]; ok {
		return s.won
	}
	return 0
}

// PreferencesLost returns the preferences every other candidate in h
// collected against c.
func (h *HeadToHeadResults) PreferencesLost(c Candidate) int {
	if s, ok := h.stats[c]; ok {
		return s.lost
	}
	return 0
}

// TotalMargin returns PreferencesWon(c) - PreferencesLost(c).
func (h *HeadToHeadResults) TotalMargin(c Candidate) int {
	return h.PreferencesWon(c) - h.PreferencesLost(c)
}

// BeatsAll reports whether c beats every candidate in others head-to-head.
func (h *HeadToHeadResults) BeatsAll(c Candidate, others []Candidate) bool {
	for _, o := range others {
		if w, ok := h.Winner(c, o); !ok || w != c {
			return false
		}
	}
	return true
}
