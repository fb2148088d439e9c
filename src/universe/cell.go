package universe

import "automata/src/rules"

//State is the committed or pending state of a cell
type State uint8

const (
	Dead State = iota
	Alive
)

func (s State) String() string {
	if s == Alive {
		return "alive"
	}
	return "dead"
}

//Cell is one entity of the grid
//State changes only through commit of a pending state
type Cell struct {
	X     int
	Y     int
	State State
	Age   int //generations survived while alive

	pending    State
	hasPending bool
}

//Next is the transition rule: the state a cell in state s takes with n live neighbours
func Next(s State, n int, rs rules.RuleSet) State {
	if s == Alive {
		if rs.Survives(n) {
			return Alive
		}
		return Dead
	}
	if rs.Births(n) {
		return Alive
	}
	return Dead
}

//Pending returns the state computed for the next generation, if any
func (c Cell) Pending() (State, bool) {
	return c.pending, c.hasPending
}

//Alive is a shortcut for State == Alive
func (c Cell) Alive() bool {
	return c.State == Alive
}

//AgeClass buckets the age for renderers: 0, 1 or 2 (two and older)
func (c Cell) AgeClass() int {
	if c.Age > 2 {
		return 2
	}
	return c.Age
}

//changeState stages s for the next commit
func (c *Cell) changeState(s State) {
	c.pending = s
	c.hasPending = true
}

//decide computes the pending state from the live neighbour count
//the age is updated here, not on commit
func (c *Cell) decide(n int, rs rules.RuleSet) {
	next := Next(c.State, n, rs)
	if c.State == Alive {
		if next == Alive {
			c.Age++
		} else {
			c.Age = 0
		}
	}
	c.changeState(next)
}

//commit applies the pending state, it reports whether the state changed
func (c *Cell) commit() bool {
	if !c.hasPending {
		return false
	}
	changed := c.State != c.pending
	c.State = c.pending
	c.hasPending = false
	return changed
}

//force sets and commits s at once, bypassing the transition rule
func (c *Cell) force(s State) {
	c.changeState(s)
	c.commit()
	if s == Dead {
		c.Age = 0
	}
}
