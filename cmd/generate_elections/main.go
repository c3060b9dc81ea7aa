// Command generate_elections writes a synthetic batch of STAR elections:
// one CSV ballot sheet per election, the expected outcomes as tallied
// now, and a run.yaml that starcalc can replay as a regression check.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-star/infrastructure/importer"
	"github.com/ahrav/go-star/internal/application"
	"github.com/ahrav/go-star/internal/domain"
	"github.com/ahrav/go-star/internal/testutils"
)

func main() {
	var (
		count      = flag.Int("count", 20, "Number of elections to generate")
		candidates = flag.Int("candidates", 5, "Candidates per election")
		voters     = flag.Int("voters", 50, "Ballots per election")
		seats      = flag.Int("seats", 1, "Seats per election")
		profile    = flag.String("profile", testutils.ProfileUniform, "Voter profile: uniform, polarized or consensus")
		seed       = flag.Uint64("seed", 1, "Seed for ballots and tiebreak draws")
		options    = flag.String("options", "", "Comma-separated tally options")
		outputDir  = flag.String("output", "testdata/generated", "Output directory")
	)
	flag.Parse()

	if !slices.Contains(testutils.Profiles, *profile) {
		log.Fatalf("Unknown profile %q, want one of %v", *profile, testutils.Profiles)
	}
	opts, err := domain.ParseOptions(splitList(*options)...)
	if err != nil {
		log.Fatalf("Invalid options: %v", err)
	}
	if err := os.MkdirAll(*outputDir, 0o750); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	cfg := testutils.GeneratorConfig{Candidates: *candidates, Voters: *voters, Seats: *seats, Profile: *profile}
	elections := testutils.GenerateElections("election", *count, cfg, *seed)

	run := application.RunConfig{
		Version:     "1.0.0",
		Name:        fmt.Sprintf("generated-%s-%d", *profile, *seed),
		Description: "Synthetic elections generated by generate_elections.",
		Options:     opts.Names(),
		Seed:        seed,
		Expected:    "expected.json",
	}

	im := importer.New()
	for _, e := range elections {
		file := e.Name() + ".csv"
		if err := writeBallots(im, filepath.Join(*outputDir, file), e); err != nil {
			log.Fatalf("Failed to write %s: %v", file, err)
		}
		run.Elections = append(run.Elections, application.ElectionConfig{Name: e.Name(), Seats: e.SeatCount(), Ballots: file})
	}

	batch := &application.Batch{
		Name:        run.Name,
		Options:     opts,
		Seed:        *seed,
		Concurrency: application.DefaultConcurrency,
		Elections:   elections,
	}
	report, err := application.NewRunner().Run(context.Background(), batch)
	if err != nil {
		log.Fatalf("Failed to tally elections: %v", err)
	}

	expected := make([]domain.ExpectedOutcome, len(report.Outcomes))
	unresolved := 0
	for i, o := range report.Outcomes {
		expected[i] = domain.ExpectedOutcome{
			Winners:    o.Result.Winners(),
			Unresolved: o.Result.UnresolvedCandidates(),
		}
		if ru, ok := o.Result.RunnerUp(); ok {
			expected[i].RunnerUp = &ru
		}
		if o.Result.UnfilledSeatCount() > 0 {
			unresolved++
		}
	}

	if err := writeJSON(filepath.Join(*outputDir, "expected.json"), expected); err != nil {
		log.Fatalf("Failed to write expected outcomes: %v", err)
	}
	if err := writeYAML(filepath.Join(*outputDir, "run.yaml"), run); err != nil {
		log.Fatalf("Failed to write run configuration: %v", err)
	}

	fmt.Printf("Generated election batch:\n")
	fmt.Printf("- Path: %s\n", *outputDir)
	fmt.Printf("- Elections: %d (%d candidates, %d voters, %d seats)\n", *count, *candidates, *voters, *seats)
	fmt.Printf("- Profile: %s\n", *profile)
	fmt.Printf("- Options: %s\n", opts)
	fmt.Printf("- Elections with unfilled seats: %d\n", unresolved)
}

func writeBallots(im *importer.Importer, path string, e *domain.Election) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := im.WriteBallots(f, e); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
