package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// cycleElection has a Condorcet cycle A>B>C>A plus D losing to everyone.
func cycleElection() *Election {
	return NewElectionBuilder().
		AddCandidates("A", "B", "C", "D").
		AddBallot(voter("v1"), Vote{"A", 5}, Vote{"B", 3}, Vote{"C", 1}).
		AddBallot(voter("v2"), Vote{"B", 5}, Vote{"C", 3}, Vote{"A", 1}).
		AddBallot(voter("v3"), Vote{"C", 5}, Vote{"A", 3}, Vote{"B", 1}).
		AddBallot(voter("v4"), Vote{"A", 2}, Vote{"B", 2}, Vote{"C", 2}).
		Build()
}

func TestHeadToHead_Preferences(t *testing.T) {
	h := NewHeadToHeadResults(cycleElection())

	assert.Equal(t, 4, h.BallotCount())
	assert.Equal(t, 2, h.Preferences("A", "B"))
	assert.Equal(t, 1, h.Preferences("B", "A"))
	assert.Equal(t, 1, h.Ties("A", "B"), "v4 scores A and B equally")
	assert.Equal(t, 1, h.Margin("A", "B"))
	assert.Equal(t, -1, h.Margin("B", "A"))

	w, ok := h.Winner("A", "B")
	assert.True(t, ok)
	assert.Equal(t, Candidate("A"), w)

	assert.ElementsMatch(t, []Candidate{"B", "D"}, h.Wins("A"))
	assert.ElementsMatch(t, []Candidate{"C"}, h.Losses("A"))
	assert.Empty(t, h.Wins("D"))
	assert.Len(t, h.Losses("D"), 3)
}

func TestHeadToHead_Conservation(t *testing.T) {
	h := NewHeadToHeadResults(cycleElection())
	cands := h.Candidates()

	for i, a := range cands {
		for _, b := range cands[i+1:] {
			sum := h.Preferences(a, b) + h.Preferences(b, a) + h.Ties(a, b)
			assert.Equal(t, h.BallotCount(), sum, "pair %s/%s", a, b)
			assert.Equal(t, -h.Margin(b, a), h.Margin(a, b))
		}
	}

	won, lost := 0, 0
	for _, c := range cands {
		won += h.PreferencesWon(c)
		lost += h.PreferencesLost(c)
	}
	assert.Equal(t, won, lost, "every preference is won by one candidate and lost by another")
}

func TestHeadToHead_Narrowed(t *testing.T) {
	full := NewHeadToHeadResults(cycleElection())

	t.Run("inclusive", func(t *testing.T) {
		h := full.Narrowed([]Candidate{"A", "B", "Z"}, Inclusive)
		assert.Equal(t, []Candidate{"A", "B"}, h.Candidates(), "unknown candidates are ignored")
		assert.Equal(t, full.Preferences("A", "B"), h.Preferences("A", "B"))
		assert.Equal(t, 2, h.PreferencesWon("A"))
		assert.Empty(t, h.Losses("A"), "C is out of the narrowed set")
		assert.Equal(t, 0, h.PreferencesWon("C"))
	})

	t.Run("exclusive", func(t *testing.T) {
		h := full.Narrowed([]Candidate{"D"}, Exclusive)
		assert.Equal(t, []Candidate{"A", "B", "C"}, h.Candidates())
		for _, c := range h.Candidates() {
			assert.Len(t, h.Wins(c), 1, "%s should beat exactly one in the cycle", c)
			assert.Len(t, h.Losses(c), 1, "%s should lose to exactly one in the cycle", c)
			assert.Equal(t, 0, h.TotalMargin(c))
		}
	})

	t.Run("independent", func(t *testing.T) {
		h := full.Narrowed([]Candidate{"A", "B"}, Inclusive)
		_ = h.Narrowed([]Candidate{"A"}, Inclusive)
		assert.Len(t, full.Candidates(), 4, "narrowing must not modify the parent")
		assert.Len(t, h.Candidates(), 2)
	})
}

func TestHeadToHead_BeatsAll(t *testing.T) {
	h := NewHeadToHeadResults(cycleElection())

	assert.True(t, h.BeatsAll("A", []Candidate{"B", "D"}))
	assert.False(t, h.BeatsAll("A", []Candidate{"B", "C"}))
	assert.True(t, h.BeatsAll("A", nil))

	_, ok := h.Winner("D", "D")
	assert.False(t, ok, "a candidate never beats itself")
}
