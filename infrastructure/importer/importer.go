// Package importer reads the reference data elections are built from:
// CSV ballot sheets, line-oriented option files, and JSON expected
// outcomes. It implements ports.ElectionImporter.
package importer

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-star/internal/domain"
	"github.com/ahrav/go-star/internal/ports"
)

var _ ports.ElectionImporter = (*Importer)(nil)

// VoterColumn is the header of the first column of a ballot sheet. Ballot
// sheets have no comment lines; every row after the header is a ballot,
// whatever its voter name starts with.
const VoterColumn = "voter"

// maxSuggestionDistance bounds how far an unknown option name may be from
// a known one before no suggestion is offered.
const maxSuggestionDistance = 4

// Importer reads ballot sheets, option files and expected outcomes.
// The zero value is ready to use and safe for concurrent use.
type Importer struct{}

// New creates an Importer.
func New() *Importer { return &Importer{} }

// ImportBallots reads a ballot sheet and adds its candidates and ballots to
// b. The first row is a header: the voter column followed by one column per
// candidate. Each following row is one ballot; a blank cell means the voter
// did not score that candidate.
func (im *Importer) ImportBallots(source string, r io.Reader, b *domain.ElectionBuilder) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return ports.NewImportError(source, "ImportBallots", 1, ports.ErrMissingHeader)
	}
	if err != nil {
		return ports.NewImportError(source, "ImportBallots", 1, fmt.Errorf("%w: %w", ports.ErrMalformedRecord, err))
	}

	candidates, err := parseHeader(header)
	if err != nil {
		return ports.NewImportError(source, "ImportBallots", 1, err)
	}
	b.AddCandidates(candidates...)

	for n := 1; ; n++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return ports.NewImportError(source, "ImportBallots", parseErrorLine(err), fmt.Errorf("%w: %w", ports.ErrMalformedRecord, err))
		}
		line, _ := reader.FieldPos(0)

		votes, err := parseVotes(candidates, record[1:])
		if err != nil {
			return ports.NewImportError(source, "ImportBallots", line, err)
		}

		voter := domain.Voter{
			Name:   strings.TrimSpace(record[0]),
			Anonym: fmt.Sprintf("Voter %d", n),
		}
		if voter.Name == "" {
			voter.Name = voter.Anonym
		}
		b.AddBallot(voter, votes...)
	}
}

// parseErrorLine returns the line a csv.ParseError starts on, or 0.
func parseErrorLine(err error) int {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return perr.StartLine
	}
	return 0
}

func parseHeader(header []string) ([]domain.Candidate, error) {
	fold := cases.Fold()
	if len(header) < 2 || fold.String(strings.TrimSpace(header[0])) != VoterColumn {
		return nil, fmt.Errorf("%w: want %q followed by candidate names", ports.ErrMissingHeader, VoterColumn)
	}

	seen := make(map[string]struct{}, len(header)-1)
	candidates := make([]domain.Candidate, 0, len(header)-1)
	for _, cell := range header[1:] {
		name := strings.TrimSpace(cell)
		if name == "" {
			return nil, fmt.Errorf("%w: empty candidate name", domain.ErrEmptyValue)
		}
		key := fold.String(name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %q", ports.ErrDuplicateCandidate, name)
		}
		seen[key] = struct{}{}
		candidates = append(candidates, domain.Candidate(name))
	}
	return candidates, nil
}

func parseVotes(candidates []domain.Candidate, cells []string) ([]domain.Vote, error) {
	votes := make([]domain.Vote, 0, len(cells))
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		score, err := strconv.Atoi(cell)
		if err != nil {
			return nil, fmt.Errorf("%w: score %q for %s is not an integer", ports.ErrMalformedRecord, cell, candidates[i])
		}
		if score < domain.MinScore || score > domain.MaxScore {
			return nil, fmt.Errorf("%w: %d for %s", domain.ErrScoreOutOfRange, score, candidates[i])
		}
		votes = append(votes, domain.Vote{Candidate: candidates[i], Score: score})
	}
	return votes, nil
}

// WriteBallots writes e's ballots as a ballot sheet that ImportBallots
// reads back into an equivalent election.
func (im *Importer) WriteBallots(w io.Writer, e *domain.Election) error {
	writer := csv.NewWriter(w)
	candidates := e.Candidates()

	header := make([]string, 0, len(candidates)+1)
	header = append(header, VoterColumn)
	for _, c := range candidates {
		header = append(header, string(c))
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, b := range e.Ballots() {
		row := make([]string, 0, len(candidates)+1)
		row = append(row, b.Voter().Name)
		for _, c := range candidates {
			row = append(row, strconv.Itoa(b.Score(c)))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write ballot %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ImportOptions reads one option name per line. Blank lines and lines
// starting with '#' are ignored; names are matched case-insensitively.
func (im *Importer) ImportOptions(source string, r io.Reader) (domain.Options, error) {
	fold := cases.Fold()
	known := make(map[string]string)
	for _, name := range domain.OptionNames() {
		known[fold.String(name)] = name
	}

	var opts domain.Options
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		canonical, ok := known[fold.String(text)]
		if !ok {
			return domain.NoOptions, ports.NewImportError(source, "ImportOptions", line, UnknownOptionError(text))
		}
		o, err := domain.ParseOption(canonical)
		if err != nil {
			return domain.NoOptions, ports.NewImportError(source, "ImportOptions", line, err)
		}
		opts |= o
	}
	if err := scanner.Err(); err != nil {
		return domain.NoOptions, ports.NewImportError(source, "ImportOptions", 0, err)
	}
	return opts, nil
}

// UnknownOptionError builds the error for an unrecognized option name,
// suggesting the closest known name when one is near enough.
func UnknownOptionError(name string) error {
	if s, ok := SuggestOption(name); ok {
		return fmt.Errorf("%w: %q (did you mean %q?)", domain.ErrUnknownOption, name, s)
	}
	return fmt.Errorf("%w: %q", domain.ErrUnknownOption, name)
}

// SuggestOption returns the known option name closest to name by edit
// distance, ignoring case.
func SuggestOption(name string) (string, bool) {
	fold := cases.Fold()
	target := fold.String(strings.TrimSpace(name))

	best, bestDist := "", maxSuggestionDistance+1
	for _, candidate := range domain.OptionNames() {
		d := levenshtein.ComputeDistance(target, fold.String(candidate))
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best, best != ""
}

// ImportExpected reads a JSON array of expected outcomes.
func (im *Importer) ImportExpected(source string, r io.Reader) ([]domain.ExpectedOutcome, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var outcomes []domain.ExpectedOutcome
	if err := decoder.Decode(&outcomes); err != nil {
		return nil, ports.NewImportError(source, "ImportExpected", 0, fmt.Errorf("%w: %w", ports.ErrMalformedRecord, err))
	}
	return outcomes, nil
}
