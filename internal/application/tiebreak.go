package application

import (
	"github.com/ahrav/go-star/internal/domain"
)

// tieStage tells the cascade which tie it is breaking.
type tieStage int

const (
	// qualifierStage ties arise while picking runoff seeds.
	qualifierStage tieStage = iota
	// runoffStage ties arise between the two seeds in the runoff.
	runoffStage
)

// condorcetStep ranks a tied set using head-to-head statistics computed
// among the tied candidates only.
type condorcetStep struct {
	step   domain.TiebreakStep
	order  domain.SortOrder
	metric func(h *domain.HeadToHeadResults) func(domain.Candidate) int
}

var condorcetSteps = []condorcetStep{
	{
		step:  domain.StepHeadToHeadLosses,
		order: domain.Ascending,
		metric: func(h *domain.HeadToHeadResults) func(domain.Candidate) int {
			return func(c domain.Candidate) int { return len(h.Losses(c)) }
		},
	},
	{
		step:   domain.StepHeadToHeadPreferences,
		order:  domain.Descending,
		metric: func(h *domain.HeadToHeadResults) func(domain.Candidate) int { return h.PreferencesWon },
	},
	{
		step:   domain.StepHeadToHeadMargin,
		order:  domain.Descending,
		metric: func(h *domain.HeadToHeadResults) func(domain.Candidate) int { return h.TotalMargin },
	},
}

// breakTie runs the tiebreak cascade over tied. It returns a single winner,
// or the candidates still tied when AllowTrueTies stops the cascade before
// the random draw.
func (t *tally) breakTie(i int, tied []domain.Candidate, stage tieStage) []domain.Candidate {
	if stage == qualifierStage && t.options.Has(domain.CondorcetProtocol) {
		for _, cs := range condorcetSteps {
			h := t.h2h.Narrowed(tied, domain.Inclusive)
			tied = t.narrow(i, cs.step, tied, cs.order, cs.metric(h))
			if len(tied) == 1 {
				return tied
			}
		}
	}

	tied = t.narrow(i, domain.StepMaxScoreVotes, tied, domain.Descending, t.election.MaxScoreVotes)
	if len(tied) == 1 {
		return tied
	}

	tied = t.narrow(i, domain.StepTotalScore, tied, domain.Descending, t.election.TotalScore)
	if len(tied) == 1 {
		return tied
	}

	if t.options.Has(domain.AllowTrueTies) {
		t.emit(domain.EventTieUnresolved, i, tied, "tie between %v cannot be broken", tied)
		return tied
	}

	winner := tied[t.rng.IntN(len(tied))]
	t.sink.Emit(domain.NewEvent(domain.EventRandomDraw, i, []domain.Candidate{winner},
		"%s drawn at random from %v", winner, tied).WithStep(domain.StepRandomDraw))
	return []domain.Candidate{winner}
}

// narrow keeps the leading group of tied when ranked by metric, reporting
// the step if it eliminated anyone.
func (t *tally) narrow(
	i int,
	step domain.TiebreakStep,
	tied []domain.Candidate,
	order domain.SortOrder,
	metric func(domain.Candidate) int,
) []domain.Candidate {
	lead := domain.RankBy(tied, order, metric)[0]
	if lead.Size() < len(tied) {
		t.sink.Emit(domain.NewEvent(domain.EventTiebreakStep, i, lead.Candidates,
			"%s narrows %v to %v", step, tied, lead.Candidates).WithStep(step))
	}
	return lead.Candidates
}
