// Package domain contains pure, dependency-free domain models and types
// for the STAR tally engine.
package domain

import (
	"fmt"
	"maps"
	"slices"
)

// Score bounds accepted on a ballot.
const (
	// MinScore is the lowest score a voter can give a candidate. Candidates
	// left off a ballot are treated as receiving MinScore.
	MinScore = 0

	// MaxScore is the highest score a voter can give a candidate.
	MaxScore = 5
)

const electionEntity = "election"

// Candidate identifies a candidate by name. Names are unique within an
// Election.
type Candidate string

// String implements fmt.Stringer.
func (c Candidate) String() string { return string(c) }

// Voter identifies the author of a ballot.
type Voter struct {
	// Name is the voter's name as it appears in the source data.
	Name string `json:"name"`

	// Anonym is the display name used when voter identity should not be
	// shown, e.g. "Voter 12".
	Anonym string `json:"anonym"`
}

// Vote is a single candidate score on a ballot.
type Vote struct {
	Candidate Candidate `json:"candidate"`
	Score     int       `json:"score"`
}

// Ballot is one voter's set of scores. Scores are sparse: a candidate that
// does not appear on the ballot scored MinScore.
type Ballot struct {
	voter  Voter
	scores map[Candidate]int
}

// NewBallot creates a ballot for voter from the given votes. A later vote
// for the same candidate replaces an earlier one.
func NewBallot(voter Voter, votes ...Vote) Ballot {
	scores := make(map[Candidate]int, len(votes))
	for _, v := range votes {
		scores[v.Candidate] = v.Score
	}
	return Ballot{voter: voter, scores: scores}
}

// Voter returns the author of the ballot.
func (b Ballot) Voter() Voter { return b.voter }

// Score returns the score given to c, or MinScore if c is absent.
func (b Ballot) Score(c Candidate) int { return b.scores[c] }

// Candidates returns the candidates that appear on the ballot, sorted by name.
func (b Ballot) Candidates() []Candidate {
	return slices.Sorted(maps.Keys(b.scores))
}

// Election is an immutable record of one election's ballots, candidates and
// seat count, together with aggregates derived once at build time.
// Use ElectionBuilder to create one.
type Election struct {
	name       string
	seatCount  int
	ballots    []Ballot
	candidates []Candidate
	totals     map[Candidate]int
	maxVotes   map[Candidate]int
	rankings   []Rank
}

// Name returns the election's name.
func (e *Election) Name() string { return e.name }

// SeatCount returns the number of seats to fill.
func (e *Election) SeatCount() int { return e.seatCount }

// Ballots returns a copy of the ballot list.
func (e *Election) Ballots() []Ballot { return slices.Clone(e.ballots) }

// BallotCount returns the number of ballots cast.
func (e *Election) BallotCount() int { return len(e.ballots) }

// Candidates returns a copy of the candidate list in the order candidates
// were first declared or seen.
func (e *Election) Candidates() []Candidate { return slices.Clone(e.candidates) }

// HasCandidate reports whether c stands in this election.
func (e *Election) HasCandidate(c Candidate) bool {
	_, ok := e.totals[c]
	return ok
}

// TotalScore returns the sum of all scores c received.
func (e *Election) TotalScore(c Candidate) int { return e.totals[c] }

// TotalScores returns a copy of the per-candidate total scores.
func (e *Election) TotalScores() map[Candidate]int { return maps.Clone(e.totals) }

// MaxScoreVotes returns how many ballots gave c the maximum score.
func (e *Election) MaxScoreVotes(c Candidate) int { return e.maxVotes[c] }

// ScoreRankings returns all candidates ranked by total score, highest first.
// Candidates with equal totals share a Rank.
func (e *Election) ScoreRankings() []Rank {
	out := make([]Rank, len(e.rankings))
	for i, r := range e.rankings {
		out[i] = Rank{Value: r.Value, Candidates: slices.Clone(r.Candidates)}
	}
	return out
}

// Validate checks the election for structural problems that make it
// impossible to tally. It returns nil or a *ValidationError that matches
// ErrInvalidElection with errors.Is.
func (e *Election) Validate() error {
	verr := NewValidationError(electionEntity)
	if e == nil {
		verr.AddError("election is nil")
		return verr
	}
	if len(e.ballots) == 0 {
		verr.AddError("election has no ballots")
	}
	if len(e.candidates) == 0 {
		verr.AddError("election has no candidates")
	}
	if e.seatCount < 1 {
		verr.AddErrorf("seat count must be at least 1, got %d", e.seatCount)
	}
	for _, c := range e.candidates {
		if c == "" {
			verr.AddError("candidate name cannot be empty")
			break
		}
	}
	for i, b := range e.ballots {
		for c, s := range b.scores {
			if s < MinScore || s > MaxScore {
				verr.AddErrorf("ballot %d: score %d for %q outside [%d, %d]", i+1, s, c, MinScore, MaxScore)
			}
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// String returns a short description of the election for logs.
func (e *Election) String() string {
	return fmt.Sprintf("Election{name=%q, seats=%d, candidates=%d, ballots=%d}",
		e.name, e.seatCount, len(e.candidates), len(e.ballots))
}

// ElectionBuilder accumulates ballots and settings and produces immutable
// Elections. A builder may be used for several builds; call Reset to clear
// accumulated state between unrelated elections.
type ElectionBuilder struct {
	name       string
	seatCount  int
	ballots    []Ballot
	candidates []Candidate
	seen       map[Candidate]struct{}
}

// NewElectionBuilder returns an empty builder with a seat count of one.
func NewElectionBuilder() *ElectionBuilder {
	b := &ElectionBuilder{}
	return b.Reset()
}

// Reset clears all accumulated state.
func (b *ElectionBuilder) Reset() *ElectionBuilder {
	b.name = ""
	b.seatCount = 1
	b.ballots = nil
	b.candidates = nil
	b.seen = make(map[Candidate]struct{})
	return b
}

// SetName sets the election's name.
func (b *ElectionBuilder) SetName(name string) *ElectionBuilder {
	b.name = name
	return b
}

// SetSeatCount sets the number of seats to fill.
func (b *ElectionBuilder) SetSeatCount(seats int) *ElectionBuilder {
	b.seatCount = seats
	return b
}

// AddCandidates declares candidates explicitly. Candidates that only appear
// on ballots are added automatically; declaring them keeps candidates that
// received no votes at all in the election.
func (b *ElectionBuilder) AddCandidates(candidates ...Candidate) *ElectionBuilder {
	for _, c := range candidates {
		b.addCandidate(c)
	}
	return b
}

// AddBallot records a ballot for voter.
func (b *ElectionBuilder) AddBallot(voter Voter, votes ...Vote) *ElectionBuilder {
	for _, v := range votes {
		b.addCandidate(v.Candidate)
	}
	b.ballots = append(b.ballots, NewBallot(voter, votes...))
	return b
}

func (b *ElectionBuilder) addCandidate(c Candidate) {
	if _, ok := b.seen[c]; ok {
		return
	}
	b.seen[c] = struct{}{}
	b.candidates = append(b.candidates, c)
}

// Build produces an Election from the accumulated state. The builder keeps
// its state, so further ballots may be added and Build called again.
// Build never fails; use Election.Validate to check the result.
func (b *ElectionBuilder) Build() *Election {
	e := &Election{
		name:       b.name,
		seatCount:  b.seatCount,
		ballots:    make([]Ballot, len(b.ballots)),
		candidates: slices.Clone(b.candidates),
		totals:     make(map[Candidate]int, len(b.candidates)),
		maxVotes:   make(map[Candidate]int, len(b.candidates)),
	}
	for i, ballot := range b.ballots {
		e.ballots[i] = Ballot{voter: ballot.voter, scores: maps.Clone(ballot.scores)}
	}

	for _, c := range e.candidates {
		e.totals[c] = 0
		e.maxVotes[c] = 0
	}
	for _, ballot := range e.ballots {
		for c, s := range ballot.scores {
			e.totals[c] += s
			if s == MaxScore {
				e.maxVotes[c]++
			}
		}
	}
	e.rankings = RankCandidates(e.totals, Descending)

	return e
}
