package application

// DefaultConcurrency is the number of elections a Runner evaluates at once
// when the run configuration does not say.
const DefaultConcurrency = 4

// RunConfig defines a batch of STAR elections to tally and serves as the
// entry point for command-line runs.
// File paths inside a RunConfig are resolved relative to the directory of
// the configuration file.
type RunConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning.
	Version string `yaml:"version" validate:"required,semver"`
	// Name identifies the batch in logs, spans and reports.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Description is free text for operators.
	Description string `yaml:"description,omitempty" validate:"max=1000"`
	// Options lists tally protocol options by name, e.g. AllowTrueTies.
	// They are combined with any options read from OptionsFile.
	Options []string `yaml:"options,omitempty" validate:"max=8,dive,staroption"`
	// OptionsFile points at a line-oriented option file.
	OptionsFile string `yaml:"options_file,omitempty"`
	// Seed makes random tiebreak draws reproducible. Election i is tallied
	// with Seed+i. When omitted a seed is derived from the clock and
	// reported so the run can be replayed.
	Seed *uint64 `yaml:"seed,omitempty"`
	// Concurrency bounds how many elections are tallied at once.
	// Zero means DefaultConcurrency.
	Concurrency int `yaml:"concurrency,omitempty" validate:"omitempty,min=1,max=64"`
	// Elections lists the elections in the batch, in report order.
	Elections []ElectionConfig `yaml:"elections" validate:"required,min=1,dive"`
	// Expected points at a JSON file of expected outcomes, one per election
	// in the same order. When set, the batch is verified.
	Expected string `yaml:"expected,omitempty"`
}

// ElectionConfig describes one election of a batch.
type ElectionConfig struct {
	// Name must be unique within the batch.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Seats is the number of seats to fill.
	Seats int `yaml:"seats" validate:"required,min=1"`
	// Ballots points at the CSV ballot sheet.
	Ballots string `yaml:"ballots" validate:"required"`
}
