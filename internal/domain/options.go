package domain

import (
	"fmt"
	"strings"
)

// Options is a set of independent tally protocol flags. The zero value is
// the plain STAR protocol: no Condorcet tiebreak step, random draws as the
// last resort, and no defacto winners.
type Options uint8

const (
	// AllowTrueTies stops the tiebreak cascade before the random draw and
	// leaves the tie unresolved.
	AllowTrueTies Options = 1 << iota

	// CondorcetProtocol adds head-to-head tiebreak steps when breaking
	// ties in the runoff qualifier.
	CondorcetProtocol

	// DefactoWinner fills a seat with the first seed when the second seed
	// cannot be determined but the first seed beats every candidate
	// tied for it head-to-head.
	DefactoWinner
)

// NoOptions is the empty option set.
const NoOptions Options = 0

var optionNames = []struct {
	opt  Options
	name string
}{
	{AllowTrueTies, "AllowTrueTies"},
	{CondorcetProtocol, "CondorcetProtocol"},
	{DefactoWinner, "DefactoWinner"},
}

// OptionNames returns the canonical names of all options.
func OptionNames() []string {
	names := make([]string, len(optionNames))
	for i, o := range optionNames {
		names[i] = o.name
	}
	return names
}

// ParseOption returns the option with the given name. Matching is
// case-insensitive.
func ParseOption(name string) (Options, error) {
	trimmed := strings.TrimSpace(name)
	for _, o := range optionNames {
		if strings.EqualFold(o.name, trimmed) {
			return o.opt, nil
		}
	}
	return NoOptions, fmt.Errorf("%w: %q", ErrUnknownOption, name)
}

// ParseOptions combines the named options into one set.
func ParseOptions(names ...string) (Options, error) {
	var opts Options
	for _, n := range names {
		o, err := ParseOption(n)
		if err != nil {
			return NoOptions, err
		}
		opts |= o
	}
	return opts, nil
}

// Has reports whether every flag in o2 is set in o.
func (o Options) Has(o2 Options) bool { return o&o2 == o2 }

// With returns o with the flags in o2 added.
func (o Options) With(o2 Options) Options { return o | o2 }

// Without returns o with the flags in o2 cleared.
func (o Options) Without(o2 Options) Options { return o &^ o2 }

// Names returns the canonical names of the set flags.
func (o Options) Names() []string {
	var names []string
	for _, n := range optionNames {
		if o.Has(n.opt) {
			names = append(names, n.name)
		}
	}
	return names
}

// String lists the set flags joined by "|", or "None".
func (o Options) String() string {
	names := o.Names()
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, "|")
}
