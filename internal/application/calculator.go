// Package application provides the core business logic and orchestration for
// the STAR tally engine.
package application

import (
	"math/rand/v2"
	"slices"

	"github.com/ahrav/go-star/internal/domain"
	"github.com/ahrav/go-star/internal/ports"
)

// seedStream is mixed into the second PCG word so that a single caller
// supplied seed fully determines the generator.
const seedStream = 0x9e3779b97f4a7c15

// Calculator computes the result of one STAR election. It fills seats one
// at a time from a shrinking pool of candidates: a scoring round picks two
// runoff seeds, the head-to-head runoff picks the winner, and ties at
// either stage go through the tiebreak cascade.
//
// A Calculator is not safe for concurrent use. To evaluate elections in
// parallel, give each goroutine its own Calculator.
type Calculator struct {
	// election is the election to tally; it is never modified.
	election *domain.Election
	// options selects the tally protocol variant.
	options domain.Options
	// sink receives detail events synchronously as the tally runs.
	sink ports.EventSink
	// newRandom returns the random source for one calculation.
	newRandom func() ports.RandomSource
	// h2h caches the full head-to-head matrix for election.
	h2h *domain.HeadToHeadResults
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithOptions sets the protocol options.
func WithOptions(opts domain.Options) CalculatorOption {
	return func(c *Calculator) { c.options = opts }
}

// WithEventSink sets the sink that receives detail events.
func WithEventSink(sink ports.EventSink) CalculatorOption {
	return func(c *Calculator) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithSeed makes random tiebreak draws reproducible. Every call to
// CalculateResult starts a fresh generator from seed.
func WithSeed(seed uint64) CalculatorOption {
	return func(c *Calculator) { c.newRandom = seededSource(seed) }
}

// WithRandomSource uses src for random tiebreak draws. The source is shared
// by every call to CalculateResult, so repeated calls only agree if src
// yields the same values again.
func WithRandomSource(src ports.RandomSource) CalculatorOption {
	return func(c *Calculator) {
		if src != nil {
			c.newRandom = func() ports.RandomSource { return src }
		}
	}
}

// NewCalculator creates a Calculator for election. Without WithSeed or
// WithRandomSource, a seed is chosen once here, so repeated calls to
// CalculateResult on the same Calculator still agree.
func NewCalculator(election *domain.Election, opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		election:  election,
		sink:      ports.DiscardSink,
		newRandom: seededSource(rand.Uint64()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func seededSource(seed uint64) func() ports.RandomSource {
	return func() ports.RandomSource {
		return rand.New(rand.NewPCG(seed, seed^seedStream))
	}
}

// SetElection replaces the election to tally.
func (c *Calculator) SetElection(election *domain.Election) {
	c.election = election
	c.h2h = nil
}

// SetOptions replaces the protocol options.
func (c *Calculator) SetOptions(opts domain.Options) { c.options = opts }

// Election returns the election being tallied.
func (c *Calculator) Election() *domain.Election { return c.election }

// Options returns the protocol options.
func (c *Calculator) Options() domain.Options { return c.options }

// CalculateResult runs the full seat-filling loop and returns one Seat per
// configured seat. An election that fails validation yields a null result
// and a single EventInvalidElection event.
func (c *Calculator) CalculateResult() domain.ElectionResult {
	if err := c.election.Validate(); err != nil {
		c.sink.Emit(domain.NewEvent(domain.EventInvalidElection, -1, nil, "%v", err))
		return domain.NullElectionResult(c.election)
	}

	if c.h2h == nil {
		c.h2h = domain.NewHeadToHeadResults(c.election)
	}

	t := &tally{
		election: c.election,
		options:  c.options,
		sink:     c.sink,
		rng:      c.newRandom(),
		h2h:      c.h2h,
		pool:     c.election.Candidates(),
	}

	seats := make([]domain.Seat, 0, c.election.SeatCount())
	for i := range c.election.SeatCount() {
		seats = append(seats, t.fillSeat(i))
	}
	return domain.NewElectionResult(c.election, seats)
}

// tally holds the state of one CalculateResult call.
type tally struct {
	election *domain.Election
	options  domain.Options
	sink     ports.EventSink
	rng      ports.RandomSource
	h2h      *domain.HeadToHeadResults
	// pool holds the candidates not yet seated.
	pool []domain.Candidate
	// halted is set once a seat cannot be filled; later seats are skipped.
	halted bool
}

func (t *tally) emit(kind domain.EventKind, seat int, candidates []domain.Candidate, format string, args ...any) {
	t.sink.Emit(domain.NewEvent(kind, seat, candidates, format, args...))
}

func (t *tally) fillSeat(i int) domain.Seat {
	if t.halted || len(t.pool) == 0 {
		if !t.halted {
			t.emit(domain.EventSeatUnfillable, i, nil, "no candidates remain for seat %d", i+1)
		} else {
			t.emit(domain.EventSeatUnfillable, i, nil, "seat %d skipped after an unfilled seat", i+1)
		}
		t.halted = true
		return domain.NewUnfillableSeat(i)
	}

	t.emit(domain.EventSeatStarted, i, t.pool, "filling seat %d from %d remaining candidates", i+1, len(t.pool))

	if len(t.pool) == 1 {
		winner := t.pool[0]
		t.emit(domain.EventExceptionFill, i, []domain.Candidate{winner},
			"%s is the only remaining candidate", winner)
		t.seat(i, winner)
		return domain.NewExceptionFilledSeat(i, winner)
	}

	h2h := t.h2h.Narrowed(t.pool, domain.Inclusive)
	q := t.qualify(i)

	first, hasFirst := q.FirstSeed()
	second, hasSecond := q.SecondSeed()

	var seat domain.Seat
	switch {
	case hasFirst && hasSecond:
		winner, tied := t.runoff(i, first, second, h2h)
		if winner == "" {
			seat = domain.NewUnresolvedSeat(i, q, tied)
			break
		}
		loser := first
		if winner == first {
			loser = second
		}
		upset := t.election.TotalScore(winner) < t.election.TotalScore(loser)
		seat = domain.NewFilledSeat(i, winner, q, upset)

	case hasFirst && t.options.Has(domain.DefactoWinner) && h2h.BeatsAll(first, q.Overflow()):
		t.emit(domain.EventDefactoWinner, i, []domain.Candidate{first},
			"%s beats every candidate tied for second seed head-to-head", first)
		seat = domain.NewFilledSeat(i, first, q, false)

	default:
		var unresolved []domain.Candidate
		if hasFirst {
			unresolved = append(unresolved, first)
		}
		unresolved = append(unresolved, q.Overflow()...)
		seat = domain.NewUnresolvedSeat(i, q, unresolved)
	}

	if winner, ok := seat.Winner(); ok {
		t.seat(i, winner)
	} else {
		t.halted = true
		t.emit(domain.EventSeatUnfilled, i, seat.UnresolvedCandidates(),
			"seat %d left unfilled, tied between %d candidates", i+1, len(seat.UnresolvedCandidates()))
	}
	return seat
}

// seat removes winner from the pool and reports the filled seat.
func (t *tally) seat(i int, winner domain.Candidate) {
	t.pool = slices.DeleteFunc(t.pool, func(c domain.Candidate) bool { return c == winner })
	t.emit(domain.EventSeatFilled, i, []domain.Candidate{winner}, "%s wins seat %d", winner, i+1)
}

// qualify runs the scoring round and selects the two runoff seeds.
func (t *tally) qualify(i int) *domain.QualifierResult {
	ranks := domain.RankBy(t.pool, domain.Descending, t.election.TotalScore)
	top := ranks[0]
	t.emit(domain.EventScoringRound, i, top.Candidates,
		"scoring round leader(s) with %d points: %v", top.Value, top.Candidates)

	var first domain.Candidate
	switch top.Size() {
	case 1:
		first = top.Candidates[0]
	case 2:
		t.emit(domain.EventBenignTie, i, top.Candidates,
			"%s and %s tie for first and are both seeded", top.Candidates[0], top.Candidates[1])
		q := domain.NewQualifierResult(top.Candidates[0], top.Candidates[1], nil, true)
		t.emit(domain.EventQualifierResolved, i, top.Candidates,
			"runoff between %s and %s", top.Candidates[0], top.Candidates[1])
		return q
	default:
		t.emit(domain.EventTieDetected, i, top.Candidates,
			"%d-way tie for first seed at %d points", top.Size(), top.Value)
		tied := t.breakTie(i, top.Candidates, qualifierStage)
		if len(tied) != 1 {
			return domain.NewQualifierResult("", "", tied, false)
		}
		first = tied[0]
	}

	rest := slices.DeleteFunc(slices.Clone(t.pool), func(c domain.Candidate) bool { return c == first })
	ranks = domain.RankBy(rest, domain.Descending, t.election.TotalScore)
	top = ranks[0]

	var second domain.Candidate
	if top.Size() == 1 {
		second = top.Candidates[0]
	} else {
		t.emit(domain.EventTieDetected, i, top.Candidates,
			"%d-way tie for second seed at %d points", top.Size(), top.Value)
		tied := t.breakTie(i, top.Candidates, qualifierStage)
		if len(tied) != 1 {
			return domain.NewQualifierResult(first, "", tied, false)
		}
		second = tied[0]
	}

	t.emit(domain.EventQualifierResolved, i, []domain.Candidate{first, second},
		"runoff between %s and %s", first, second)
	return domain.NewQualifierResult(first, second, nil, false)
}

// runoff decides between the two seeds. It returns the winner, or the
// candidates still tied when no winner could be determined.
func (t *tally) runoff(i int, a, b domain.Candidate, h2h *domain.HeadToHeadResults) (domain.Candidate, []domain.Candidate) {
	pa, pb := h2h.Preferences(a, b), h2h.Preferences(b, a)
	if w, ok := h2h.Winner(a, b); ok {
		l := a
		if w == a {
			l = b
		}
		t.emit(domain.EventRunoffResult, i, []domain.Candidate{w},
			"%s defeats %s head-to-head, %d to %d", w, l, max(pa, pb), min(pa, pb))
		return w, nil
	}

	pair := []domain.Candidate{a, b}
	t.emit(domain.EventTieDetected, i, pair, "runoff between %s and %s tied at %d", a, b, pa)
	tied := t.breakTie(i, pair, runoffStage)
	if len(tied) != 1 {
		return "", tied
	}
	t.emit(domain.EventRunoffResult, i, tied, "%s wins the runoff on tiebreak", tied[0])
	return tied[0], nil
}
