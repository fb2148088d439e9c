package rules

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidNotation = errors.New("invalid rule notation")

//Parse reads a rule in B/S notation ("B36/S23", "s23/b3") or in the
//older survive/born digit form ("23/36")
func Parse(s string) (RuleSet, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(s)), "/")
	if len(parts) != 2 {
		return RuleSet{}, errors.Wrapf(ErrInvalidNotation, "[Parse] %q", s)
	}

	var (
		survive, born NeighborSet
		seen          = map[byte]bool{}
		err           error
	)
	for i, part := range parts {
		tag := byte(0)
		if part != "" && (part[0] == 'B' || part[0] == 'S') {
			tag, part = part[0], part[1:]
		} else if i == 0 {
			tag = 'S'
		} else {
			tag = 'B'
		}
		if seen[tag] {
			return RuleSet{}, errors.Wrapf(ErrInvalidNotation, "[Parse] %q: %c given twice", s, tag)
		}
		seen[tag] = true

		var set NeighborSet
		if set, err = parseDigits(part); err != nil {
			return RuleSet{}, errors.Wrapf(err, "[Parse] %q", s)
		}
		if tag == 'B' {
			born = set
		} else {
			survive = set
		}
	}
	return FromSets(survive, born), nil
}

func parseDigits(digits string) (NeighborSet, error) {
	counts := make([]int, 0, len(digits))
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, errors.Wrapf(ErrInvalidNotation, "unexpected %q", c)
		}
		counts = append(counts, int(c-'0'))
	}
	return NewNeighborSet(counts...)
}
