package universe

import (
	"sort"

	"github.com/pkg/errors"
)

var ErrUnknownTemplate = errors.New("unknown template")

//Template represent the seeding template which can used to settle the universe with predefined data
type Template struct {
	Name        string   //template name
	Descr       string   //template descr
	Coordinates [][2]int //live cells as x,y offsets
}

//BuiltinTemplates are registered with every new Simulation
var BuiltinTemplates = []Template{
	{"block", "2x2 still life", [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}},
	{"blinker", "period 2 oscillator", [][2]int{{0, 0}, {1, 0}, {2, 0}}},
	{"toad", "period 2 oscillator", [][2]int{{1, 0}, {2, 0}, {3, 0}, {0, 1}, {1, 1}, {2, 1}}},
	{"beacon", "period 2 oscillator", [][2]int{{0, 0}, {1, 0}, {0, 1}, {3, 2}, {2, 3}, {3, 3}}},
	{"glider", "moves one cell diagonally every 4 generations", [][2]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}}},
}

//Size returns the bounding box of the template
func (t Template) Size() (w, h int) {
	for _, c := range t.Coordinates {
		if c[0]+1 > w {
			w = c[0] + 1
		}
		if c[1]+1 > h {
			h = c[1] + 1
		}
	}
	return
}

//settleTemplate places the template with its top-left corner at x, y
//cells falling outside the grid are dropped
func settleTemplate(g *Grid, t Template, x, y int) int {
	placed := 0
	for _, c := range t.Coordinates {
		if err := g.SetCell(x+c[0], y+c[1], Alive); err == nil {
			placed++
		}
	}
	return placed
}

type templateStore map[string]Template

func (s templateStore) lookup(name string) (Template, error) {
	t, ok := s[name]
	if !ok {
		return Template{}, errors.Wrapf(ErrUnknownTemplate, "[Template] %q", name)
	}
	return t, nil
}

func (s templateStore) names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
