package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_String(t *testing.T) {
	e := NewEvent(EventSeatFilled, 0, []Candidate{"A"}, "%s wins seat %d", "A", 1)
	assert.Equal(t, "[seat 1] [seat_filled] A wins seat 1", e.String())

	e = NewEvent(EventInvalidElection, -1, nil, "no ballots")
	assert.Equal(t, "[invalid_election] no ballots", e.String())
}

func TestEvent_CopiesCandidates(t *testing.T) {
	cands := []Candidate{"A", "B"}
	e := NewEvent(EventTieDetected, 0, cands, "tie")
	cands[0] = "Z"

	assert.Equal(t, []Candidate{"A", "B"}, e.Candidates, "events must not alias caller slices")
}

func TestEvent_JSON(t *testing.T) {
	e := NewEvent(EventTiebreakStep, 2, []Candidate{"C"}, "narrowed").WithStep(StepMaxScoreVotes)

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "tiebreak_step", m["kind"])
	assert.Equal(t, "max_score_votes", m["step"])
	assert.EqualValues(t, 2, m["seat"])

	plain, err := json.Marshal(NewEvent(EventSeatStarted, 0, nil, "start"))
	require.NoError(t, err)
	assert.NotContains(t, string(plain), "step", "step should be omitted when unset")
}
