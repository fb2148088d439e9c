package rules

import (
	"sync"

	"github.com/pkg/errors"
)

//Registry holds the named rule sets and the one currently in effect
//it is safe for concurrent use, a reader always gets one consistent RuleSet value
type Registry struct {
	mu         sync.RWMutex
	sets       map[string]RuleSet
	order      []string
	active     RuleSet
	activeName string
}

//NewRegistry returns an empty registry with no active rules
func NewRegistry() *Registry {
	return &Registry{sets: map[string]RuleSet{}}
}

//NewDefaultRegistry returns a registry loaded with Presets and DefaultName selected
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range Presets {
		if err := r.RegisterPreset(p.Name, p.Survive, p.Born); err != nil {
			panic(err)
		}
	}
	if _, err := r.Select(DefaultName); err != nil {
		panic(err)
	}
	return r
}

//RegisterPreset stores a named rule set, a repeated name overwrites the previous one
func (r *Registry) RegisterPreset(name string, survive, born []int) error {
	rs, err := New(survive, born)
	if err != nil {
		return errors.Wrapf(err, "[RegisterPreset] %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store(name, rs)
	return nil
}

//Select makes the named rule set active and returns it
//on error the active rule set is left unchanged
func (r *Registry) Select(name string) (RuleSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rs, ok := r.sets[name]
	if !ok {
		return RuleSet{}, errors.Wrapf(ErrUnknownRuleSet, "[Select] %q", name)
	}
	r.active = rs
	r.activeName = name
	return rs, nil
}

//MatchPreset returns the preset whose sets equal the given ones
//the custom slot never matches
func (r *Registry) MatchPreset(survive, born []int) (string, bool) {
	rs, err := New(survive, born)
	if err != nil {
		return "", false
	}
	return r.Match(rs)
}

//Match is MatchPreset for an already built RuleSet
func (r *Registry) Match(rs RuleSet) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		if name == CustomName {
			continue
		}
		if r.sets[name].Equal(rs) {
			return name, true
		}
	}
	return "", false
}

//SetCustom overwrites the custom slot and makes it active
func (r *Registry) SetCustom(survive, born []int) error {
	rs, err := New(survive, born)
	if err != nil {
		return errors.Wrap(err, "[SetCustom]")
	}
	r.SetCustomRuleSet(rs)
	return nil
}

//SetCustomRuleSet is SetCustom for an already built RuleSet
func (r *Registry) SetCustomRuleSet(rs RuleSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store(CustomName, rs)
	r.active = rs
	r.activeName = CustomName
}

//Active returns the rule set in effect together with its slot name
func (r *Registry) Active() (string, RuleSet) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeName, r.active
}

//Lookup returns a registered rule set without selecting it
func (r *Registry) Lookup(name string) (RuleSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.sets[name]
	return rs, ok
}

//Names lists the registered names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

//store must be called with the write lock held
func (r *Registry) store(name string, rs RuleSet) {
	if _, ok := r.sets[name]; !ok {
		r.order = append(r.order, name)
	}
	r.sets[name] = rs
}
