package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualifierResult_NilSafe(t *testing.T) {
	var q *QualifierResult

	assert.True(t, q.IsNull())
	assert.False(t, q.IsComplete())
	assert.False(t, q.IsSimultaneous())
	assert.Nil(t, q.Overflow())
	_, ok := q.FirstSeed()
	assert.False(t, ok)
}

func TestQualifierResult_PartialSeeds(t *testing.T) {
	q := NewQualifierResult("A", "", []Candidate{"B", "C"}, false)

	first, ok := q.FirstSeed()
	assert.True(t, ok)
	assert.Equal(t, Candidate("A"), first)
	_, ok = q.SecondSeed()
	assert.False(t, ok)
	assert.False(t, q.IsComplete())
	assert.Equal(t, []Candidate{"B", "C"}, q.Overflow())
}

func TestSeat_Kinds(t *testing.T) {
	q := NewQualifierResult("A", "B", nil, true)

	t.Run("filled", func(t *testing.T) {
		s := NewFilledSeat(0, "B", q, true)
		w, ok := s.Winner()
		assert.True(t, ok)
		assert.Equal(t, Candidate("B"), w)
		assert.True(t, s.IsFilled())
		assert.True(t, s.IsUpset())
		assert.False(t, s.IsExceptionFilled())
		r, ok := s.RunnerUp()
		assert.True(t, ok)
		assert.Equal(t, Candidate("A"), r)
		assert.True(t, s.Qualifier().IsSimultaneous())
	})

	t.Run("exception filled", func(t *testing.T) {
		s := NewExceptionFilledSeat(2, "C")
		assert.Equal(t, 2, s.Index())
		assert.True(t, s.IsFilled())
		assert.True(t, s.IsExceptionFilled())
		assert.True(t, s.Qualifier().IsNull())
		_, ok := s.RunnerUp()
		assert.False(t, ok)
	})

	t.Run("unresolved", func(t *testing.T) {
		s := NewUnresolvedSeat(1, q, []Candidate{"A", "B"})
		assert.False(t, s.IsFilled())
		assert.Equal(t, []Candidate{"A", "B"}, s.UnresolvedCandidates())
		_, ok := s.RunnerUp()
		assert.False(t, ok)
	})

	t.Run("unfillable", func(t *testing.T) {
		s := NewUnfillableSeat(3)
		assert.False(t, s.IsFilled())
		assert.Empty(t, s.UnresolvedCandidates())
		assert.Nil(t, s.Qualifier())
	})
}

func TestElectionResult_Summary(t *testing.T) {
	r := NewElectionResult(nil, []Seat{
		NewFilledSeat(0, "A", NewQualifierResult("A", "B", nil, false), false),
		NewUnresolvedSeat(1, NewQualifierResult("", "", []Candidate{"D", "C"}, false), []Candidate{"D", "C"}),
		NewUnfillableSeat(2),
	})

	assert.False(t, r.IsNull())
	assert.Equal(t, 3, r.SeatCount())
	assert.Equal(t, 1, r.FilledSeatCount())
	assert.Equal(t, 2, r.UnfilledSeatCount())
	assert.Equal(t, []Candidate{"A"}, r.Winners())
	assert.Equal(t, []Candidate{"C", "D"}, r.UnresolvedCandidates())
	ru, ok := r.RunnerUp()
	assert.True(t, ok)
	assert.Equal(t, Candidate("B"), ru)

	assert.True(t, NullElectionResult(nil).IsNull())
	_, ok = NullElectionResult(nil).RunnerUp()
	assert.False(t, ok)
}

func TestElectionResult_Mismatch(t *testing.T) {
	r := NewElectionResult(nil, []Seat{
		NewFilledSeat(0, "C1", NewQualifierResult("C1", "C2", nil, true), false),
	})
	c2, c3 := Candidate("C2"), Candidate("C3")

	tests := []struct {
		name string
		want ExpectedOutcome
		diff string
	}{
		{name: "match", want: ExpectedOutcome{Winners: []Candidate{"C1"}, RunnerUp: &c2}},
		{name: "runner-up unchecked", want: ExpectedOutcome{Winners: []Candidate{"C1"}}},
		{name: "wrong winner", want: ExpectedOutcome{Winners: []Candidate{"C2"}}, diff: "winners differ: got [C1], want [C2]"},
		{name: "wrong runner-up", want: ExpectedOutcome{Winners: []Candidate{"C1"}, RunnerUp: &c3}, diff: "runner-up differs: got [C2], want C3"},
		{
			name: "unexpected tie",
			want: ExpectedOutcome{Winners: []Candidate{"C1"}, Unresolved: []Candidate{"C4"}},
			diff: "unresolved candidates differ: got [], want [C4]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.diff, r.Mismatch(tt.want))
			assert.Equal(t, tt.diff == "", r.Matches(tt.want))
		})
	}
}

func TestExpectedOutcome_JSON(t *testing.T) {
	var got []ExpectedOutcome
	err := json.Unmarshal([]byte(`[{"winners":["C1"],"runner_up":"C2"},{"winners":[],"unresolved":["A","B"]}]`), &got)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].RunnerUp)
	assert.Equal(t, Candidate("C2"), *got[0].RunnerUp)
	assert.Nil(t, got[1].RunnerUp)
	assert.Equal(t, []Candidate{"A", "B"}, got[1].Unresolved)

	data, err := json.Marshal(ExpectedOutcome{Winners: []Candidate{"X"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"winners":["X"]}`, string(data), "optional fields should be omitted")
}
