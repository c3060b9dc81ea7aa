package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-star/internal/domain"
	"github.com/ahrav/go-star/internal/testutils"
)

func TestHeadToHead_ConservationGenerated(t *testing.T) {
	for _, profile := range testutils.Profiles {
		t.Run(profile, func(t *testing.T) {
			cfg := testutils.GeneratorConfig{Candidates: 6, Voters: 11, Seats: 1, Profile: profile}
			for seed := range uint64(25) {
				e := testutils.GenerateElection("conservation", cfg, seed)
				h := domain.NewHeadToHeadResults(e)
				cands := h.Candidates()

				for i, a := range cands {
					for _, b := range cands[i+1:] {
						sum := h.Preferences(a, b) + h.Preferences(b, a) + h.Ties(a, b)
						assert.Equal(t, e.BallotCount(), sum, "seed %d: pair %s/%s", seed, a, b)
					}
				}

				narrowed := h.Narrowed(cands[:3], domain.Inclusive)
				won, lost := 0, 0
				for _, c := range narrowed.Candidates() {
					won += narrowed.PreferencesWon(c)
					lost += narrowed.PreferencesLost(c)
				}
				assert.Equal(t, won, lost, "seed %d: narrowing keeps preferences balanced", seed)
			}
		})
	}
}
