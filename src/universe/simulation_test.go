package universe

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"

	"automata/src/rules"
)

func newTestOptions(w, h int) Options {
	o := DefaultOptions
	o.Width = w
	o.Height = h
	o.Interval = 0
	o.Seed = 11
	return o
}

//startSimulation runs the simulation loop until the test ends
func startSimulation(t *testing.T, o Options, stateCh chan Status) *Simulation {
	t.Helper()
	u, err := NewSimulation(&o, nil, stateCh)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- u.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	})
	return u
}

//waitFor reads statuses until one matches
func waitFor(t *testing.T, stateCh chan Status, match func(Status) bool) Status {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case st := <-stateCh:
			if match(st) {
				return st
			}
		case <-timeout:
			t.Fatal("timed out waiting for status")
		}
	}
}

func TestNewSimulation(t *testing.T) {
	o := newTestOptions(0, 5)
	if _, err := NewSimulation(&o, nil, nil); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}

	o = newTestOptions(5, 5)
	o.Rules = "nope"
	if _, err := NewSimulation(&o, nil, nil); !errors.Is(err, rules.ErrUnknownRuleSet) {
		t.Fatalf("expected ErrUnknownRuleSet, got %v", err)
	}

	o = newTestOptions(5, 5)
	o.Custom = "B9/S23"
	if _, err := NewSimulation(&o, nil, nil); !errors.Is(err, rules.ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule, got %v", err)
	}

	tests := []struct {
		rules, custom string
		want          string
	}{
		{"", "", rules.DefaultName},
		{"maze", "", "maze"},
		{"maze", "B36/S23", "high_life"},
		{"", "B1/S12", rules.CustomName},
	}
	for _, tt := range tests {
		o = newTestOptions(5, 5)
		o.Rules, o.Custom = tt.rules, tt.custom
		u, err := NewSimulation(&o, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if st := u.Status(); st.Rules != tt.want {
			t.Errorf("rules %q custom %q: active %q, want %q", tt.rules, tt.custom, st.Rules, tt.want)
		}
	}

	u, _ := NewSimulation(nil, nil, nil)
	if a := u.Area(); a.Width != DefWidth || a.Height != DefHeight {
		t.Fatalf("default area %dx%d", a.Width, a.Height)
	}
	if len(u.Templates()) != len(BuiltinTemplates) {
		t.Fatalf("templates %v", u.Templates())
	}
}

func TestSimulationStep(t *testing.T) {
	u := startSimulation(t, newTestOptions(5, 5), nil)
	if err := u.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := u.SettleTemplate("blinker", 1, 2); err != nil {
		t.Fatal(err)
	}
	if st := u.Status(); st.LiveCells != 3 || st.Generation != 0 {
		t.Fatalf("after settle: %+v", st)
	}

	if err := u.Step(); err != nil {
		t.Fatal(err)
	}
	st := u.Status()
	if st.Generation != 1 || st.LiveCells != 3 || !st.Changed || st.RunningMode != RunningStateManual {
		t.Fatalf("after step: %+v", st)
	}
	for _, p := range [][2]int{{2, 1}, {2, 2}, {2, 3}} {
		if c, _ := u.Cell(p[0], p[1]); !c.Alive() {
			t.Fatalf("cell %v should be alive", p)
		}
	}
	if c, _ := u.Cell(1, 2); c.Alive() {
		t.Fatal("blinker end should have died")
	}
}

func TestSimulationEdits(t *testing.T) {
	u := startSimulation(t, newTestOptions(4, 4), nil)
	_ = u.Clear()

	if err := u.SetCell(4, 0, Alive); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if err := u.ToggleCell(-1, 2); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if _, err := u.Cell(0, 4); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if u.Status().LiveCells != 0 {
		t.Fatal("failed edits must not change the grid")
	}

	if err := u.ToggleCell(1, 1); err != nil {
		t.Fatal(err)
	}
	if c, _ := u.Cell(1, 1); !c.Alive() {
		t.Fatal("toggle should revive the cell")
	}
	if err := u.ToggleCell(1, 1); err != nil {
		t.Fatal(err)
	}
	if c, _ := u.Cell(1, 1); c.Alive() || c.Age != 0 {
		t.Fatal("second toggle should kill the cell")
	}

	if err := u.SetCell(3, 3, Alive); err != nil {
		t.Fatal(err)
	}
	if u.Status().LiveCells != 1 {
		t.Fatalf("live cells %d", u.Status().LiveCells)
	}

	if err := u.SettleTemplate("nope", 0, 0); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
	//templates are clipped at the edge
	if err := u.SettleTemplate("glider", 2, 2); err != nil {
		t.Fatal(err)
	}

	if err := u.Fill(); err != nil {
		t.Fatal(err)
	}
	for _, c := range u.Area().Cells {
		if c.Age != 0 {
			t.Fatal("fill must reset ages")
		}
	}
}

func TestSimulationRules(t *testing.T) {
	u := startSimulation(t, newTestOptions(4, 4), nil)

	if err := u.SelectRules("nope"); !errors.Is(err, rules.ErrUnknownRuleSet) {
		t.Fatalf("expected ErrUnknownRuleSet, got %v", err)
	}
	if st := u.Status(); st.Rules != rules.DefaultName {
		t.Fatalf("failed select changed rules to %q", st.Rules)
	}

	if err := u.SelectRules("seeds"); err != nil {
		t.Fatal(err)
	}
	if st := u.Status(); st.Rules != "seeds" || st.RuleSet.String() != "B2/S" {
		t.Fatalf("status rules %q %s", st.Rules, st.RuleSet)
	}

	_ = u.SelectRules("life")
	if err := u.ToggleRule(rules.Born, 6); err != nil {
		t.Fatal(err)
	}
	if st := u.Status(); st.Rules != "high_life" {
		t.Fatalf("life + B6 should reflect to high_life, got %q", st.Rules)
	}
	if err := u.ToggleRule(rules.Survive, 1); err != nil {
		t.Fatal(err)
	}
	if st := u.Status(); st.Rules != rules.CustomName || st.RuleSet.String() != "B36/S123" {
		t.Fatalf("expected custom B36/S123, got %q %s", st.Rules, st.RuleSet)
	}
	if err := u.ToggleRule(rules.Survive, 1); err != nil {
		t.Fatal(err)
	}
	if st := u.Status(); st.Rules != "high_life" {
		t.Fatalf("expected high_life again, got %q", st.Rules)
	}
	if err := u.ToggleRule(rules.Born, 9); !errors.Is(err, rules.ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule, got %v", err)
	}

	rs, _ := rules.Parse("B45/S12")
	if err := u.SetCustomRules(rs); err != nil {
		t.Fatal(err)
	}
	if st := u.Status(); st.Rules != rules.CustomName || st.RuleSet != rs {
		t.Fatalf("custom rules not applied: %q %s", st.Rules, st.RuleSet)
	}
	if names := u.RuleNames(); len(names) != len(rules.Presets) {
		t.Fatalf("rule names %v", names)
	}
}

func TestSimulationRunFinishesOnStillLife(t *testing.T) {
	stateCh := make(chan Status, 100)
	u := startSimulation(t, newTestOptions(8, 8), stateCh)
	_ = u.Clear()
	_ = u.SettleTemplate("block", 3, 3)
	if err := u.Play(); err != nil {
		t.Fatal(err)
	}
	st := waitFor(t, stateCh, func(st Status) bool { return st.RunningMode == RunningStateFinished })
	if st.Generation != 1 || st.Changed || st.LiveCells != 4 {
		t.Fatalf("finished with %+v", st)
	}
}

func TestSimulationRunFinishesOnMaxSteps(t *testing.T) {
	stateCh := make(chan Status, 100)
	o := newTestOptions(8, 8)
	o.MaxSteps = 5
	u := startSimulation(t, o, stateCh)
	_ = u.Clear()
	_ = u.SettleTemplate("blinker", 2, 3)
	_ = u.Play()
	st := waitFor(t, stateCh, func(st Status) bool { return st.RunningMode == RunningStateFinished })
	if st.Generation != 5 || st.LiveCells != 3 {
		t.Fatalf("finished with %+v", st)
	}

	//stepping past the limit is refused
	_ = u.Step()
	if st := u.Status(); st.Generation != 5 || st.RunningMode != RunningStateFinished {
		t.Fatalf("after limit: %+v", st)
	}
}

func TestSimulationPause(t *testing.T) {
	stateCh := make(chan Status, 1000)
	o := newTestOptions(8, 8)
	o.Interval = time.Millisecond
	u := startSimulation(t, o, stateCh)
	_ = u.Clear()
	_ = u.SettleTemplate("blinker", 2, 3)
	_ = u.Play()
	waitFor(t, stateCh, func(st Status) bool { return st.Generation >= 3 })
	if err := u.Pause(); err != nil {
		t.Fatal(err)
	}
	paused := u.Status()
	if paused.RunningMode != RunningStateManual {
		t.Fatalf("mode after pause %v", paused.RunningMode)
	}
	time.Sleep(20 * time.Millisecond)
	if st := u.Status(); st.Generation != paused.Generation {
		t.Fatalf("generation advanced while paused: %d -> %d", paused.Generation, st.Generation)
	}
}

type countingViewer struct {
	refreshes int32
	u         Universe
}

func (v *countingViewer) Refresh()            { atomic.AddInt32(&v.refreshes, 1) }
func (v *countingViewer) Register(u Universe) { v.u = u }
func (v *countingViewer) Start() error        { return nil }

func TestSimulationViewers(t *testing.T) {
	o := newTestOptions(4, 4)
	u, err := NewSimulation(&o, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	v := &countingViewer{}
	u.RegisterViewer(v)
	if v.u != u {
		t.Fatal("viewer was not registered")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- u.Run(ctx) }()

	_ = u.Clear()
	_ = u.Step()
	_ = u.SetCell(0, 0, Alive)
	if n := atomic.LoadInt32(&v.refreshes); n != 3 {
		t.Fatalf("refreshes = %d, want 3", n)
	}

	cancel()
	<-done
	if err := u.Step(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after Run returned, got %v", err)
	}
}
