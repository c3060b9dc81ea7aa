package domain

import (
	"fmt"
	"slices"
)

// EventKind classifies a diagnostic detail event emitted while tallying.
type EventKind string

// Detail event kinds, in roughly the order a seat produces them.
const (
	EventInvalidElection   EventKind = "invalid_election"
	EventSeatStarted       EventKind = "seat_started"
	EventExceptionFill     EventKind = "exception_fill"
	EventScoringRound      EventKind = "scoring_round"
	EventBenignTie         EventKind = "benign_tie"
	EventTieDetected       EventKind = "tie_detected"
	EventTiebreakStep      EventKind = "tiebreak_step"
	EventRandomDraw        EventKind = "random_draw"
	EventTieUnresolved     EventKind = "tie_unresolved"
	EventQualifierResolved EventKind = "qualifier_resolved"
	EventDefactoWinner     EventKind = "defacto_winner"
	EventRunoffResult      EventKind = "runoff_result"
	EventSeatFilled        EventKind = "seat_filled"
	EventSeatUnfilled      EventKind = "seat_unfilled"
	EventSeatUnfillable    EventKind = "seat_unfillable"
)

// TiebreakStep names one step of the tiebreak cascade.
type TiebreakStep string

// Cascade steps in the order they are tried.
const (
	StepHeadToHeadLosses      TiebreakStep = "head_to_head_losses"
	StepHeadToHeadPreferences TiebreakStep = "head_to_head_preferences"
	StepHeadToHeadMargin      TiebreakStep = "head_to_head_margin"
	StepMaxScoreVotes         TiebreakStep = "max_score_votes"
	StepTotalScore            TiebreakStep = "total_score"
	StepRandomDraw            TiebreakStep = "random_draw"
)

// Event is a diagnostic detail event describing one thing the calculator
// did. Events carry values only and are safe to retain.
type Event struct {
	// Kind classifies the event.
	Kind EventKind `json:"kind"`

	// Seat is the zero-based index of the seat being filled, or -1 for
	// election-level events.
	Seat int `json:"seat"`

	// Step names the tiebreak step for EventTiebreakStep and
	// EventRandomDraw.
	Step TiebreakStep `json:"step,omitempty"`

	// Candidates lists the candidates the event refers to, e.g. the set
	// remaining after a tiebreak step or the winner of a seat.
	Candidates []Candidate `json:"candidates,omitempty"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// NewEvent creates an event with a formatted message.
func NewEvent(kind EventKind, seat int, candidates []Candidate, format string, args ...any) Event {
	return Event{
		Kind:       kind,
		Seat:       seat,
		Candidates: slices.Clone(candidates),
		Message:    fmt.Sprintf(format, args...),
	}
}

// WithStep returns a copy of e tagged with a tiebreak step.
func (e Event) WithStep(step TiebreakStep) Event {
	e.Step = step
	return e
}

// String implements fmt.Stringer.
func (e Event) String() string {
	if e.Seat < 0 {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("[seat %d] [%s] %s", e.Seat+1, e.Kind, e.Message)
}
