package rules

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

//MaxNeighbors is the size of the Moore neighbourhood
const MaxNeighbors = 8

var (
	ErrInvalidRule    = errors.New("neighbor count out of range [0,8]")
	ErrUnknownRuleSet = errors.New("unknown rule set")
)

//NeighborSet is a set of live neighbour counts, bit n set means count n is a member
type NeighborSet uint16

//NewNeighborSet builds the set from the counts, every count must be in [0,8]
func NewNeighborSet(counts ...int) (NeighborSet, error) {
	var s NeighborSet
	for _, n := range counts {
		if n < 0 || n > MaxNeighbors {
			return 0, errors.Wrapf(ErrInvalidRule, "[NewNeighborSet] count %d", n)
		}
		s |= 1 << uint(n)
	}
	return s, nil
}

//Has reports whether n is in the set
func (s NeighborSet) Has(n int) bool {
	if n < 0 || n > MaxNeighbors {
		return false
	}
	return s&(1<<uint(n)) != 0
}

//Toggle returns a copy of the set with n flipped
func (s NeighborSet) Toggle(n int) NeighborSet {
	if n < 0 || n > MaxNeighbors {
		return s
	}
	return s ^ (1 << uint(n))
}

//Counts returns the members in ascending order
func (s NeighborSet) Counts() []int {
	counts := make([]int, 0, MaxNeighbors+1)
	for n := 0; n <= MaxNeighbors; n++ {
		if s.Has(n) {
			counts = append(counts, n)
		}
	}
	return counts
}

func (s NeighborSet) String() string {
	var b strings.Builder
	for _, n := range s.Counts() {
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

//RuleSet is an immutable survive/born pair
//the zero value has empty sets: nothing survives and nothing is born
type RuleSet struct {
	survive NeighborSet
	born    NeighborSet
}

//New validates the counts and returns the RuleSet
func New(survive, born []int) (RuleSet, error) {
	s, err := NewNeighborSet(survive...)
	if err != nil {
		return RuleSet{}, errors.Wrap(err, "[New] survive")
	}
	b, err := NewNeighborSet(born...)
	if err != nil {
		return RuleSet{}, errors.Wrap(err, "[New] born")
	}
	return RuleSet{survive: s, born: b}, nil
}

//FromSets builds a RuleSet from already validated sets, bits above 8 are dropped
func FromSets(survive, born NeighborSet) RuleSet {
	const mask = NeighborSet(1<<(MaxNeighbors+1) - 1)
	return RuleSet{survive: survive & mask, born: born & mask}
}

func (r RuleSet) Survive() NeighborSet { return r.survive }
func (r RuleSet) Born() NeighborSet    { return r.born }

//Survives reports whether a live cell with n live neighbours stays alive
func (r RuleSet) Survives(n int) bool { return r.survive.Has(n) }

//Births reports whether a dead cell with n live neighbours becomes alive
func (r RuleSet) Births(n int) bool { return r.born.Has(n) }

//Equal compares both sets, the order the counts were given in is irrelevant
func (r RuleSet) Equal(o RuleSet) bool {
	return r.survive == o.survive && r.born == o.born
}

//String renders the rule in B/S notation, e.g. B3/S23
func (r RuleSet) String() string {
	return "B" + r.born.String() + "/S" + r.survive.String()
}

//Kind selects one of the two sets of a RuleSet
type Kind int

const (
	Survive Kind = iota
	Born
)

func (k Kind) String() string {
	if k == Born {
		return "born"
	}
	return "survive"
}

//Toggle returns a copy of the rule with count n flipped in the chosen set
func (r RuleSet) Toggle(k Kind, n int) RuleSet {
	if k == Born {
		r.born = r.born.Toggle(n)
	} else {
		r.survive = r.survive.Toggle(n)
	}
	return r
}
