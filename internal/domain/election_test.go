package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func voter(n string) Voter { return Voter{Name: n, Anonym: n} }

func TestBallot_ScoreDefaultsToMin(t *testing.T) {
	b := NewBallot(voter("v1"), Vote{"A", 4}, Vote{"B", 2}, Vote{"A", 5})

	assert.Equal(t, 5, b.Score("A"), "later vote should replace earlier")
	assert.Equal(t, 2, b.Score("B"))
	assert.Equal(t, MinScore, b.Score("Z"), "absent candidate scores MinScore")
	assert.Equal(t, []Candidate{"A", "B"}, b.Candidates())
	assert.Equal(t, "v1", b.Voter().Name)
}

func TestElectionBuilder_Aggregates(t *testing.T) {
	e := NewElectionBuilder().
		SetName("board").
		SetSeatCount(2).
		AddCandidates("C", "A").
		AddBallot(voter("v1"), Vote{"A", 5}, Vote{"B", 3}).
		AddBallot(voter("v2"), Vote{"A", 2}, Vote{"B", 5}, Vote{"C", 5}).
		AddBallot(voter("v3"), Vote{"A", 5}).
		Build()

	assert.Equal(t, "board", e.Name())
	assert.Equal(t, 2, e.SeatCount())
	assert.Equal(t, 3, e.BallotCount())
	assert.Equal(t, []Candidate{"C", "A", "B"}, e.Candidates(), "declaration order then first-seen order")

	assert.Equal(t, 12, e.TotalScore("A"))
	assert.Equal(t, 8, e.TotalScore("B"))
	assert.Equal(t, 5, e.TotalScore("C"))
	assert.Equal(t, 2, e.MaxScoreVotes("A"))
	assert.Equal(t, 1, e.MaxScoreVotes("B"))
	assert.Equal(t, 1, e.MaxScoreVotes("C"))

	assert.True(t, e.HasCandidate("C"))
	assert.False(t, e.HasCandidate("D"))

	rankings := e.ScoreRankings()
	require.Len(t, rankings, 3)
	assert.Equal(t, Rank{Value: 12, Candidates: []Candidate{"A"}}, rankings[0])
	assert.Equal(t, Rank{Value: 5, Candidates: []Candidate{"C"}}, rankings[2])
	assert.NoError(t, e.Validate())
}

func TestElectionBuilder_DeclaredCandidateWithoutVotes(t *testing.T) {
	e := NewElectionBuilder().
		AddCandidates("A", "B").
		AddBallot(voter("v1"), Vote{"A", 3}).
		Build()

	assert.True(t, e.HasCandidate("B"))
	assert.Equal(t, 0, e.TotalScore("B"))
	assert.Equal(t, map[Candidate]int{"A": 3, "B": 0}, e.TotalScores())
}

func TestElectionBuilder_BuildIsImmutable(t *testing.T) {
	b := NewElectionBuilder().AddBallot(voter("v1"), Vote{"A", 3})
	first := b.Build()

	b.AddBallot(voter("v2"), Vote{"A", 4}, Vote{"B", 1})
	second := b.Build()

	assert.Equal(t, 1, first.BallotCount(), "earlier election must not see later ballots")
	assert.Equal(t, 3, first.TotalScore("A"))
	assert.False(t, first.HasCandidate("B"))
	assert.Equal(t, 2, second.BallotCount())
	assert.Equal(t, 7, second.TotalScore("A"))

	ballots := first.Ballots()
	ballots[0] = NewBallot(voter("x"))
	assert.Equal(t, "v1", first.Ballots()[0].Voter().Name, "Ballots should return a copy")
}

func TestElectionBuilder_Reset(t *testing.T) {
	b := NewElectionBuilder().
		SetName("old").
		SetSeatCount(3).
		AddBallot(voter("v1"), Vote{"A", 3})

	e := b.Reset().AddBallot(voter("v2"), Vote{"B", 1}).Build()

	assert.Equal(t, "", e.Name())
	assert.Equal(t, 1, e.SeatCount(), "reset should restore the default seat count")
	assert.Equal(t, []Candidate{"B"}, e.Candidates())
	assert.Equal(t, 1, e.BallotCount())
}

func TestElection_Validate(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Election
		wantErr string
	}{
		{
			name: "valid",
			build: func() *Election {
				return NewElectionBuilder().AddBallot(voter("v"), Vote{"A", 5}).Build()
			},
		},
		{
			name: "no ballots",
			build: func() *Election {
				return NewElectionBuilder().AddCandidates("A").Build()
			},
			wantErr: "no ballots",
		},
		{
			name:    "no candidates",
			build:   func() *Election { return NewElectionBuilder().AddBallot(voter("v")).Build() },
			wantErr: "no candidates",
		},
		{
			name: "zero seats",
			build: func() *Election {
				return NewElectionBuilder().SetSeatCount(0).AddBallot(voter("v"), Vote{"A", 1}).Build()
			},
			wantErr: "seat count must be at least 1",
		},
		{
			name: "empty candidate name",
			build: func() *Election {
				return NewElectionBuilder().AddBallot(voter("v"), Vote{"", 1}).Build()
			},
			wantErr: "candidate name cannot be empty",
		},
		{
			name: "score above max",
			build: func() *Election {
				return NewElectionBuilder().AddBallot(voter("v"), Vote{"A", 6}).Build()
			},
			wantErr: "score 6",
		},
		{
			name: "negative score",
			build: func() *Election {
				return NewElectionBuilder().AddBallot(voter("v"), Vote{"A", -1}).Build()
			},
			wantErr: "score -1",
		},
		{
			name:    "nil election",
			build:   func() *Election { return nil },
			wantErr: "election is nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidElection)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
