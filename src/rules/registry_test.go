package rules

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
)

func TestDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	name, active := r.Active()
	if name != DefaultName {
		t.Fatalf("active = %q, want %q", name, DefaultName)
	}
	if active.String() != "B3/S23" {
		t.Fatalf("active rules = %s", active)
	}
	names := r.Names()
	if len(names) != len(Presets) {
		t.Fatalf("got %d names", len(names))
	}
	for i, p := range Presets {
		if names[i] != p.Name {
			t.Fatalf("names[%d] = %q, want %q", i, names[i], p.Name)
		}
	}
}

func TestSelect(t *testing.T) {
	r := NewDefaultRegistry()
	rs, err := r.Select("high_life")
	if err != nil {
		t.Fatal(err)
	}
	if rs.String() != "B36/S23" {
		t.Fatalf("selected %s", rs)
	}
	if name, active := r.Active(); name != "high_life" || active != rs {
		t.Fatalf("active = %q %s", name, active)
	}

	_, err = r.Select("no_such_rule")
	if !errors.Is(err, ErrUnknownRuleSet) {
		t.Fatalf("expected ErrUnknownRuleSet, got %v", err)
	}
	if name, _ := r.Active(); name != "high_life" {
		t.Fatalf("failed select changed the active rules to %q", name)
	}
}

func TestRegisterPreset(t *testing.T) {
	r := NewRegistry()
	if name, active := r.Active(); name != "" || active != (RuleSet{}) {
		t.Fatal("empty registry must have no active rules")
	}
	if err := r.RegisterPreset("bad", []int{2, 9}, nil); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule, got %v", err)
	}
	if _, ok := r.Lookup("bad"); ok {
		t.Fatal("invalid preset was stored")
	}

	if err := r.RegisterPreset("p", []int{1}, []int{1}); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterPreset("p", []int{2}, []int{2}); err != nil {
		t.Fatal(err)
	}
	rs, ok := r.Lookup("p")
	if !ok || rs.String() != "B2/S2" {
		t.Fatalf("last write must win, got %s", rs)
	}
	if names := r.Names(); len(names) != 1 {
		t.Fatalf("re-registering must not duplicate the name: %v", names)
	}
}

func TestMatchPreset(t *testing.T) {
	r := NewDefaultRegistry()
	tests := []struct {
		survive, born []int
		want          string
		ok            bool
	}{
		{[]int{2, 3}, []int{3}, "life", true},
		{[]int{3, 2}, []int{3}, "life", true},
		{[]int{2, 3}, []int{3, 6}, "high_life", true},
		{[]int{2, 3}, []int{6, 3}, "high_life", true},
		{nil, []int{2}, "seeds", true},
		{[]int{1, 2}, []int{1, 2}, "", false},
		{nil, nil, "", false},
		{[]int{9}, []int{3}, "", false},
	}
	for _, tt := range tests {
		got, ok := r.MatchPreset(tt.survive, tt.born)
		if got != tt.want || ok != tt.ok {
			t.Errorf("MatchPreset(%v, %v) = %q, %v; want %q, %v", tt.survive, tt.born, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSetCustom(t *testing.T) {
	r := NewDefaultRegistry()
	if err := r.SetCustom([]int{1, 2}, []int{1, 2}); err != nil {
		t.Fatal(err)
	}
	name, active := r.Active()
	if name != CustomName || active.String() != "B12/S12" {
		t.Fatalf("active = %q %s", name, active)
	}
	if rs, _ := r.Lookup(CustomName); rs != active {
		t.Fatal("custom slot was not overwritten")
	}
	if _, ok := r.MatchPreset([]int{1, 2}, []int{1, 2}); ok {
		t.Fatal("custom slot must not be reported as a preset match")
	}

	if err := r.SetCustom([]int{10}, nil); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule, got %v", err)
	}
	if _, active := r.Active(); active.String() != "B12/S12" {
		t.Fatal("invalid custom rules must not replace the active set")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewDefaultRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if i%2 == 0 {
					_, _ = r.Select("high_life")
					_ = r.SetCustom([]int{j % 9}, []int{3})
				} else {
					_, active := r.Active()
					_, _ = r.Match(active)
				}
			}
		}(i)
	}
	wg.Wait()
}
