package universe

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"automata/src/rules"
)

var ErrClosed = errors.New("simulation is not running")

//Status represents the status of the Simulation at concrete moment
type Status struct {
	Generation    int
	RunningMode   RunningState
	LiveCells     int
	Changed       bool //whether the last generation changed any cell
	Rules         string
	RuleSet       rules.RuleSet
	IterationTime time.Duration
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(u Universe)
	Start() error
}

//The simulation running status at the concrete moment
type RunningState int

const (
	RunningStateManual RunningState = iota
	RunningStateRun
	RunningStateFinished
)

func (s RunningState) String() string {
	switch s {
	case RunningStateRun:
		return "running"
	case RunningStateFinished:
		return "finished"
	default:
		return "waiting"
	}
}

//immediate is always ready, it drives autoplay when no interval is set
var immediate = func() chan time.Time {
	c := make(chan time.Time)
	close(c)
	return c
}()

//Simulation drives a Grid under the rules of a Registry
//All mutations run on the goroutine executing Run: commands are closures sent over controlCh
//and autoplay ticks are served by the same select, so steps, edits and rule changes never interleave
type Simulation struct {
	options Options
	rules   *rules.Registry
	state   struct {
		Status
		sync.Mutex
	}
	grid struct {
		*Grid
		sync.Mutex
	}
	templates struct {
		templateStore
		sync.RWMutex
	}
	stateCh   chan Status
	views     []Viewer
	controlCh chan func()
	done      chan struct{}
	ctx       context.Context
}

//NewSimulation creates the Simulation
//registry may be nil, the default preset registry is used then
//stateCh is optional, when set every status change is written to it
func NewSimulation(o *Options, registry *rules.Registry, stateCh chan Status) (*Simulation, error) {
	if o == nil {
		o = &DefaultOptions
	}
	if registry == nil {
		registry = rules.NewDefaultRegistry()
	}
	g, err := NewGrid(o.Width, o.Height, o.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "[NewSimulation]")
	}

	u := &Simulation{
		options:   *o,
		rules:     registry,
		stateCh:   stateCh,
		controlCh: make(chan func()),
		done:      make(chan struct{}),
	}
	u.grid.Grid = g
	u.templates.templateStore = templateStore{}
	for _, t := range BuiltinTemplates {
		u.AddTemplate(t)
	}

	switch {
	case o.Custom != "":
		rs, err := rules.Parse(o.Custom)
		if err != nil {
			return nil, errors.Wrap(err, "[NewSimulation] custom rules")
		}
		u.applyRuleSet(rs)
	case o.Rules != "":
		if _, err := registry.Select(o.Rules); err != nil {
			return nil, errors.Wrap(err, "[NewSimulation]")
		}
	}

	u.state.LiveCells = g.LiveCells()
	u.state.Rules, u.state.RuleSet = registry.Active()
	return u, nil
}

//Run is the main cycle, it executes commands and autoplay steps until ctx is done
//it must be called once, commands issued after it returns fail with ErrClosed
func (u *Simulation) Run(ctx context.Context) error {
	u.ctx = ctx
	defer close(u.done)

	var ticker *time.Ticker
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		var tick <-chan time.Time
		if u.Status().RunningMode == RunningStateRun {
			if u.options.Interval <= 0 {
				tick = immediate
			} else {
				if ticker == nil {
					ticker = time.NewTicker(u.options.Interval)
				}
				tick = ticker.C
			}
		} else if ticker != nil {
			ticker.Stop()
			ticker = nil
		}

		select {
		case <-ctx.Done():
			return nil
		case cmd := <-u.controlCh:
			cmd()
		case <-tick:
			u.step()
		}
	}
}

//Status returns current simulation status represented by Status struct
func (u *Simulation) Status() Status {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.Status
}

//Options returns current simulation configuration represented by Options struct
func (u *Simulation) Options() Options {
	return u.options
}

//Area returns a copy of the grid
func (u *Simulation) Area() Area {
	u.grid.Lock()
	defer u.grid.Unlock()
	return u.grid.Area()
}

//Cell returns a copy of one cell
func (u *Simulation) Cell(x, y int) (Cell, error) {
	u.grid.Lock()
	defer u.grid.Unlock()
	return u.grid.Cell(x, y)
}

//StateCh returns the channel with the simulation's status updates
func (u *Simulation) StateCh() chan Status {
	return u.stateCh
}

//RuleNames lists the registered rule sets for selection lists
func (u *Simulation) RuleNames() []string {
	return u.rules.Names()
}

//AddTemplate adds the seeding template to the internal storage
func (u *Simulation) AddTemplate(tmpl Template) {
	u.templates.Lock()
	u.templates.templateStore[tmpl.Name] = tmpl
	u.templates.Unlock()
}

//Templates returns the template names sorted
func (u *Simulation) Templates() []string {
	u.templates.RLock()
	defer u.templates.RUnlock()
	return u.templates.names()
}

//Template returns a registered template
func (u *Simulation) Template(name string) (Template, error) {
	u.templates.RLock()
	defer u.templates.RUnlock()
	return u.templates.lookup(name)
}

//RegisterViewer registers the viewer - the simulation will call the viewer when the state is changed
//viewers must be registered before Run
func (u *Simulation) RegisterViewer(v Viewer) {
	u.views = append(u.views, v)
	v.Register(u)
}

//Play starts autoplay
func (u *Simulation) Play() error {
	return u.exec(func() error {
		u.setMode(RunningStateRun)
		u.publish()
		return nil
	})
}

//Pause stops autoplay
func (u *Simulation) Pause() error {
	return u.exec(func() error {
		if u.Status().RunningMode == RunningStateRun {
			u.setMode(RunningStateManual)
		}
		u.publish()
		return nil
	})
}

//Step pauses autoplay and advances one generation
func (u *Simulation) Step() error {
	return u.exec(func() error {
		u.setMode(RunningStateManual)
		u.step()
		return nil
	})
}

//Clear kills all cells and resets the generation counter
func (u *Simulation) Clear() error {
	return u.exec(func() error {
		u.grid.Lock()
		u.grid.Clear()
		u.grid.Unlock()
		u.state.Lock()
		u.state.Generation = 0
		u.state.LiveCells = 0
		u.state.Changed = false
		u.state.RunningMode = RunningStateManual
		u.state.Unlock()
		u.publish()
		return nil
	})
}

//Fill randomizes all cells and resets the generation counter
func (u *Simulation) Fill() error {
	return u.exec(func() error {
		u.grid.Lock()
		u.grid.Fill()
		live := u.grid.LiveCells()
		u.grid.Unlock()
		u.state.Lock()
		u.state.Generation = 0
		u.state.LiveCells = live
		u.state.Changed = true
		if u.state.RunningMode == RunningStateFinished {
			u.state.RunningMode = RunningStateManual
		}
		u.state.Unlock()
		u.publish()
		return nil
	})
}

//SetCell forces the state of the cell at x, y
func (u *Simulation) SetCell(x, y int, s State) error {
	return u.exec(func() error {
		return u.edit(func(g *Grid) error {
			return g.SetCell(x, y, s)
		})
	})
}

//ToggleCell inverses the cell state at point x, y
func (u *Simulation) ToggleCell(x, y int) error {
	return u.exec(func() error {
		return u.edit(func(g *Grid) error {
			c, err := g.Cell(x, y)
			if err != nil {
				return err
			}
			next := Alive
			if c.Alive() {
				next = Dead
			}
			return g.SetCell(x, y, next)
		})
	})
}

//SettleTemplate places the named template with its top-left corner at x, y
func (u *Simulation) SettleTemplate(name string, x, y int) error {
	tmpl, err := u.Template(name)
	if err != nil {
		return err
	}
	return u.exec(func() error {
		return u.edit(func(g *Grid) error {
			settleTemplate(g, tmpl, x, y)
			return nil
		})
	})
}

//SelectRules activates a registered rule set
func (u *Simulation) SelectRules(name string) error {
	return u.exec(func() error {
		if _, err := u.rules.Select(name); err != nil {
			return err
		}
		u.syncRules()
		return nil
	})
}

//SetCustomRules stores rs in the custom slot, or selects the preset it coincides with
func (u *Simulation) SetCustomRules(rs rules.RuleSet) error {
	return u.exec(func() error {
		u.applyRuleSet(rs)
		u.syncRules()
		return nil
	})
}

//ToggleRule flips neighbour count n in the survive or born set of the active rules
func (u *Simulation) ToggleRule(kind rules.Kind, n int) error {
	if n < 0 || n > rules.MaxNeighbors {
		return errors.Wrapf(rules.ErrInvalidRule, "[ToggleRule] %s %d", kind, n)
	}
	return u.exec(func() error {
		_, active := u.rules.Active()
		u.applyRuleSet(active.Toggle(kind, n))
		u.syncRules()
		return nil
	})
}

//exec hands cmd to the Run goroutine and waits for its result
func (u *Simulation) exec(cmd func() error) error {
	res := make(chan error, 1)
	select {
	case u.controlCh <- func() { res <- cmd() }:
	case <-u.done:
		return ErrClosed
	}
	//controlCh is unbuffered: once sent the command is already running
	return <-res
}

//edit applies a direct grid mutation and publishes the new status
func (u *Simulation) edit(fn func(g *Grid) error) error {
	u.grid.Lock()
	err := fn(u.grid.Grid)
	live := u.grid.LiveCells()
	u.grid.Unlock()
	if err != nil {
		return err
	}
	u.state.Lock()
	u.state.LiveCells = live
	if u.state.RunningMode == RunningStateFinished {
		u.state.RunningMode = RunningStateManual
	}
	u.state.Unlock()
	u.publish()
	return nil
}

//applyRuleSet makes rs active, by preset name when it matches one
func (u *Simulation) applyRuleSet(rs rules.RuleSet) {
	if name, ok := u.rules.Match(rs); ok {
		if _, err := u.rules.Select(name); err == nil {
			return
		}
	}
	u.rules.SetCustomRuleSet(rs)
}

func (u *Simulation) syncRules() {
	name, rs := u.rules.Active()
	u.state.Lock()
	u.state.Rules, u.state.RuleSet = name, rs
	u.state.Unlock()
	u.publish()
}

func (u *Simulation) setMode(to RunningState) {
	u.state.Lock()
	u.state.RunningMode = to
	u.state.Unlock()
}

//step does one generation for the entire grid
//the active rules are read once so the whole pass uses one rule set
func (u *Simulation) step() {
	name, rs := u.rules.Active()

	u.state.Lock()
	maxSteps := u.options.MaxSteps
	if maxSteps > 0 && u.state.Generation >= maxSteps {
		u.state.RunningMode = RunningStateFinished
		u.state.Unlock()
		u.publish()
		return
	}
	u.state.Unlock()

	start := time.Now()
	u.grid.Lock()
	live, changed := u.grid.Step(rs)
	u.grid.Unlock()
	elapsed := time.Since(start)

	u.state.Lock()
	u.state.Generation++
	u.state.LiveCells = live
	u.state.Changed = changed
	u.state.Rules, u.state.RuleSet = name, rs
	u.state.IterationTime = elapsed
	if u.state.RunningMode == RunningStateRun {
		if live == 0 || !changed || (maxSteps > 0 && u.state.Generation >= maxSteps) {
			u.state.RunningMode = RunningStateFinished
		}
	}
	u.state.Unlock()
	u.publish()
}

//publish writes the status to stateCh and refreshes the views
func (u *Simulation) publish() {
	st := u.Status()
	if u.stateCh != nil {
		select {
		case u.stateCh <- st:
		case <-u.ctx.Done():
		}
	}
	u.refreshView()
}

//refreshView calls Refresh event for all registered views
func (u *Simulation) refreshView() {
	for _, v := range u.views {
		v.Refresh()
	}
}
