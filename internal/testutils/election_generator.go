package testutils

import (
	"fmt"
	"math/rand/v2"

	"github.com/ahrav/go-star/internal/domain"
)

// Voter profiles shape how generated ballots are scored.
const (
	// ProfileUniform scores every candidate uniformly at random.
	ProfileUniform = "uniform"
	// ProfilePolarized gives each voter's favourites MaxScore and the rest
	// MinScore, which produces many ties.
	ProfilePolarized = "polarized"
	// ProfileConsensus scores candidates around a shared quality so one or
	// two candidates usually lead.
	ProfileConsensus = "consensus"
)

// Profiles lists the supported voter profiles.
var Profiles = []string{ProfileUniform, ProfilePolarized, ProfileConsensus}

// GeneratorConfig controls the shape of generated elections.
type GeneratorConfig struct {
	Candidates int
	Voters     int
	Seats      int
	Profile    string
}

// DefaultGeneratorConfig returns a small single-seat configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{Candidates: 4, Voters: 25, Seats: 1, Profile: ProfileUniform}
}

// GenerateElection creates a random election. The seed fully determines
// the result, so failing property tests can be replayed.
func GenerateElection(name string, cfg GeneratorConfig, seed uint64) *domain.Election {
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	candidates := make([]domain.Candidate, cfg.Candidates)
	for i := range candidates {
		candidates[i] = domain.Candidate(fmt.Sprintf("C%d", i+1))
	}
	quality := make([]int, cfg.Candidates)
	for i := range quality {
		quality[i] = rng.IntN(domain.MaxScore + 1)
	}

	b := domain.NewElectionBuilder().
		SetName(name).
		SetSeatCount(cfg.Seats).
		AddCandidates(candidates...)

	for v := range cfg.Voters {
		votes := make([]domain.Vote, 0, len(candidates))
		for i, c := range candidates {
			votes = append(votes, domain.Vote{Candidate: c, Score: generateScore(rng, cfg.Profile, quality[i])})
		}
		voterName := fmt.Sprintf("Voter %d", v+1)
		b.AddBallot(domain.Voter{Name: voterName, Anonym: voterName}, votes...)
	}
	return b.Build()
}

// GenerateElections creates n elections named "<prefix>-<i>", each from
// its own seed derived from seed.
func GenerateElections(prefix string, n int, cfg GeneratorConfig, seed uint64) []*domain.Election {
	out := make([]*domain.Election, n)
	for i := range n {
		out[i] = GenerateElection(fmt.Sprintf("%s-%d", prefix, i+1), cfg, seed+uint64(i))
	}
	return out
}

func generateScore(rng *rand.Rand, profile string, quality int) int {
	switch profile {
	case ProfilePolarized:
		if rng.IntN(2) == 0 {
			return domain.MaxScore
		}
		return domain.MinScore
	case ProfileConsensus:
		s := quality + rng.IntN(3) - 1
		return max(domain.MinScore, min(domain.MaxScore, s))
	default:
		return rng.IntN(domain.MaxScore + 1)
	}
}
