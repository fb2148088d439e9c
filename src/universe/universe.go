package universe

import (
	"context"

	"automata/src/rules"
)

//Universe is the surface views and drivers use, *Simulation implements it
type Universe interface {
	Status() Status
	Options() Options
	Area() Area
	Cell(x, y int) (Cell, error)
	StateCh() chan Status
	RuleNames() []string
	AddTemplate(tmpl Template)
	Templates() []string
	SettleTemplate(name string, x, y int) error
	SetCell(x, y int, s State) error
	ToggleCell(x, y int) error
	SelectRules(name string) error
	SetCustomRules(rs rules.RuleSet) error
	ToggleRule(kind rules.Kind, n int) error
	RegisterViewer(v Viewer)
	Run(ctx context.Context) error
	Play() error
	Pause() error
	Step() error
	Fill() error
	Clear() error
}

var _ Universe = (*Simulation)(nil)
