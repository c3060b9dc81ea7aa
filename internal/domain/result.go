package domain

import (
	"slices"
	"strings"
)

// QualifierResult describes how the two runoff seeds were selected from
// the scoring round. A nil *QualifierResult means no qualifier ran, as for
// exception-filled and unfillable seats.
type QualifierResult struct {
	firstSeed    Candidate
	secondSeed   Candidate
	overflow     []Candidate
	simultaneous bool
}

// NewQualifierResult creates a QualifierResult. An empty Candidate marks an
// absent seed.
func NewQualifierResult(first, second Candidate, overflow []Candidate, simultaneous bool) *QualifierResult {
	return &QualifierResult{
		firstSeed:    first,
		secondSeed:   second,
		overflow:     slices.Clone(overflow),
		simultaneous: simultaneous,
	}
}

// IsNull reports whether q is the null qualifier.
func (q *QualifierResult) IsNull() bool { return q == nil }

// FirstSeed returns the first runoff seed, if one was determined.
func (q *QualifierResult) FirstSeed() (Candidate, bool) {
	if q == nil || q.firstSeed == "" {
		return "", false
	}
	return q.firstSeed, true
}

// SecondSeed returns the second runoff seed, if one was determined.
func (q *QualifierResult) SecondSeed() (Candidate, bool) {
	if q == nil || q.secondSeed == "" {
		return "", false
	}
	return q.secondSeed, true
}

// Overflow returns the candidates left tied when a seed could not be
// determined.
func (q *QualifierResult) Overflow() []Candidate {
	if q == nil {
		return nil
	}
	return slices.Clone(q.overflow)
}

// IsSimultaneous reports whether both seeds were picked by the same event,
// a benign two-way tie for first place.
func (q *QualifierResult) IsSimultaneous() bool { return q != nil && q.simultaneous }

// IsComplete reports whether both seeds were determined.
func (q *QualifierResult) IsComplete() bool {
	return q != nil && q.firstSeed != "" && q.secondSeed != ""
}

// Seat is the outcome of filling one seat.
type Seat struct {
	index           int
	winner          Candidate
	qualifier       *QualifierResult
	exceptionFilled bool
	upset           bool
	unresolved      []Candidate
}

// NewFilledSeat creates a seat won by winner after a qualifier. upset marks
// a winner that had the lower scoring-round total of the two seeds.
func NewFilledSeat(index int, winner Candidate, q *QualifierResult, upset bool) Seat {
	return Seat{index: index, winner: winner, qualifier: q, upset: upset}
}

// NewExceptionFilledSeat creates a seat filled by the only remaining
// candidate.
func NewExceptionFilledSeat(index int, winner Candidate) Seat {
	return Seat{index: index, winner: winner, exceptionFilled: true}
}

// NewUnresolvedSeat creates an unfilled seat whose outcome is tied between
// the unresolved candidates. q may be nil.
func NewUnresolvedSeat(index int, q *QualifierResult, unresolved []Candidate) Seat {
	return Seat{index: index, qualifier: q, unresolved: slices.Clone(unresolved)}
}

// NewUnfillableSeat creates a seat that could not be attempted.
func NewUnfillableSeat(index int) Seat {
	return Seat{index: index}
}

// Index returns the zero-based position of the seat in fill order.
func (s Seat) Index() int { return s.index }

// Winner returns the seat's winner, if it was filled.
func (s Seat) Winner() (Candidate, bool) {
	return s.winner, s.winner != ""
}

// Qualifier returns the seat's qualifier result; nil means none ran.
func (s Seat) Qualifier() *QualifierResult { return s.qualifier }

// IsFilled reports whether the seat has a winner.
func (s Seat) IsFilled() bool { return s.winner != "" }

// IsExceptionFilled reports whether the seat was filled directly because
// only one candidate remained.
func (s Seat) IsExceptionFilled() bool { return s.exceptionFilled }

// IsUpset reports whether the runoff winner had the lower scoring-round
// total of the two seeds. Equal totals are not an upset.
func (s Seat) IsUpset() bool { return s.upset }

// RunnerUp returns the runoff seed that did not win the seat.
func (s Seat) RunnerUp() (Candidate, bool) {
	if s.winner == "" || !s.qualifier.IsComplete() {
		return "", false
	}
	if s.qualifier.firstSeed == s.winner {
		return s.qualifier.secondSeed, true
	}
	if s.qualifier.secondSeed == s.winner {
		return s.qualifier.firstSeed, true
	}
	return "", false
}

// UnresolvedCandidates returns the candidates still in contention for an
// unfilled seat.
func (s Seat) UnresolvedCandidates() []Candidate { return slices.Clone(s.unresolved) }

// ElectionResult is the ordered list of Seats produced for one Election.
// A null result, returned for invalid elections, has no seats.
type ElectionResult struct {
	election *Election
	seats    []Seat
}

// NewElectionResult creates a result for e from seats in fill order.
func NewElectionResult(e *Election, seats []Seat) ElectionResult {
	return ElectionResult{election: e, seats: slices.Clone(seats)}
}

// NullElectionResult returns the result reported for an election that could
// not be tallied.
func NullElectionResult(e *Election) ElectionResult {
	return ElectionResult{election: e}
}

// IsNull reports whether the result holds no seats.
func (r ElectionResult) IsNull() bool { return len(r.seats) == 0 }

// Election returns the election the result belongs to.
func (r ElectionResult) Election() *Election { return r.election }

// Seats returns a copy of the seats in fill order.
func (r ElectionResult) Seats() []Seat { return slices.Clone(r.seats) }

// Winners returns the winners of the filled seats in fill order.
func (r ElectionResult) Winners() []Candidate {
	var winners []Candidate
	for _, s := range r.seats {
		if w, ok := s.Winner(); ok {
			winners = append(winners, w)
		}
	}
	return winners
}

// RunnerUp returns the runner-up of the first seat.
func (r ElectionResult) RunnerUp() (Candidate, bool) {
	if len(r.seats) == 0 {
		return "", false
	}
	return r.seats[0].RunnerUp()
}

// UnresolvedCandidates returns every candidate left in contention by an
// unresolved seat, without duplicates, sorted by name.
func (r ElectionResult) UnresolvedCandidates() []Candidate {
	var out []Candidate
	for _, s := range r.seats {
		for _, c := range s.unresolved {
			if !slices.Contains(out, c) {
				out = append(out, c)
			}
		}
	}
	slices.Sort(out)
	return out
}

// SeatCount returns the number of seats in the result.
func (r ElectionResult) SeatCount() int { return len(r.seats) }

// FilledSeatCount returns the number of seats that have a winner.
func (r ElectionResult) FilledSeatCount() int {
	n := 0
	for _, s := range r.seats {
		if s.IsFilled() {
			n++
		}
	}
	return n
}

// UnfilledSeatCount returns the number of seats without a winner.
func (r ElectionResult) UnfilledSeatCount() int { return r.SeatCount() - r.FilledSeatCount() }

// ExpectedOutcome is a reference outcome an ElectionResult is verified
// against.
type ExpectedOutcome struct {
	// Winners lists the expected seat winners in fill order.
	Winners []Candidate `json:"winners"`

	// RunnerUp is the expected runner-up of the first seat. Nil skips the
	// check.
	RunnerUp *Candidate `json:"runner_up,omitempty"`

	// Unresolved lists the candidates expected to remain tied. Empty
	// requires that nothing is left unresolved.
	Unresolved []Candidate `json:"unresolved,omitempty"`
}

// Matches reports whether r agrees with the expected outcome.
func (r ElectionResult) Matches(want ExpectedOutcome) bool {
	return r.Mismatch(want) == ""
}

// Mismatch describes the first difference between r and want, or returns
// "" when they agree.
func (r ElectionResult) Mismatch(want ExpectedOutcome) string {
	if got := r.Winners(); !slices.Equal(got, want.Winners) {
		return "winners differ: got " + joinCandidates(got) + ", want " + joinCandidates(want.Winners)
	}
	if want.RunnerUp != nil {
		got, ok := r.RunnerUp()
		if !ok || got != *want.RunnerUp {
			return "runner-up differs: got " + joinCandidates(optional(got, ok)) + ", want " + want.RunnerUp.String()
		}
	}
	wantTied := slices.Sorted(slices.Values(want.Unresolved))
	if got := r.UnresolvedCandidates(); !slices.Equal(got, wantTied) {
		return "unresolved candidates differ: got " + joinCandidates(got) + ", want " + joinCandidates(wantTied)
	}
	return ""
}

func optional(c Candidate, ok bool) []Candidate {
	if !ok {
		return nil
	}
	return []Candidate{c}
}

func joinCandidates(cs []Candidate) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return "[" + strings.Join(names, ", ") + "]"
}
