package view

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"

	"automata/src/rules"
	"automata/src/universe"
)

type keyBindings struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

type ConsoleUI struct {
	u universe.Universe
	g *gocui.Gui
	k []keyBindings

	mu       sync.Mutex
	editKind rules.Kind
	message  string

	liveFillers [3]string //indexed by Cell.AgeClass
	deadFiller  string
}

var (
	runningStateDescr = map[universe.RunningState]string{
		universe.RunningStateManual:   aurora.Colorize("waiting", aurora.BlueFg).String(),
		universe.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
		universe.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
	}
)

const (
	minWindowHeight = 26
	leftColumnWidth = 30
)

func NewViewTerminal() (*ConsoleUI, error) {

	var err error
	t := ConsoleUI{
		liveFillers: [3]string{
			aurora.Green("█").String(),
			aurora.Green("█").BgBrightGreen().String(),
			aurora.Cyan("█").String(),
		},
		deadFiller: "░",
	}

	t.g, err = gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, errors.Wrap(err, "[NewViewTerminal] failed to init terminal")
	}

	t.g.Mouse = true
	t.k = []keyBindings{
		{gocui.KeyCtrlC, "^C", "Exit", t.cmdQuit, ""},
		{'n', "N", "Next step", t.cmdNextRound, ""},
		{'r', "R", "Run", t.cmdRun, ""},
		{'s', "S", "Stop", t.cmdStop, ""},
		{'c', "C", "Clear", t.cmdClear, ""},
		{'w', "W", "Fill random", t.cmdFill, ""},
		{']', "]", "Next rules", t.cmdNextRules, ""},
		{'[', "[", "Prev rules", t.cmdPrevRules, ""},
		{'b', "B", "Edit born/survive", t.cmdSwitchEditKind, ""},
		{'0', "0-8", "Toggle count", nil, ""},
		{gocui.MouseLeft, "MOUSE", "Toggle the cell", t.cmdMouseClick, "battlefield"},
	}
	t.g.SetManagerFunc(t.layout)

	if err = t.initKeyBindings(t.k); err != nil {
		t.g.Close()
		return nil, err
	}

	return &t, nil
}

func (t *ConsoleUI) initKeyBindings(k []keyBindings) error {
	for _, kb := range k {
		if kb.handler == nil {
			continue
		}
		h := kb.handler
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(gui *gocui.Gui, view *gocui.View) error { return h(view) }); err != nil {
			return errors.Wrapf(err, "[initKeyBindings] %s", kb.name)
		}
	}
	//digit keys toggle the neighbour count in the set being edited
	for n := 0; n <= rules.MaxNeighbors; n++ {
		count := n
		key := rune('0' + n)
		if err := t.g.SetKeybinding("", key, gocui.ModNone, func(*gocui.Gui, *gocui.View) error { return t.cmdToggleRule(count) }); err != nil {
			return errors.Wrapf(err, "[initKeyBindings] %c", key)
		}
	}
	return nil
}

func (t *ConsoleUI) Register(u universe.Universe) {
	t.u = u
}

//Start runs the terminal main loop until the user quits
func (t *ConsoleUI) Start() error {
	defer t.g.Close()
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return errors.Wrap(err, "[Start]")
	}
	return nil
}

func (t *ConsoleUI) Refresh() {
	t.renderField(t.u.Area())
	t.renderConfiguration()
	t.renderStatus()
	t.renderRules()
}

func (t *ConsoleUI) renderField(a universe.Area) {

	t.g.Update(func(g *gocui.Gui) error {
		v, e := g.View("battlefield")
		if e != nil {
			//not laid out yet
			return nil
		}
		v.Clear()

		crop := false
		maxW, maxH := v.Size()
		if a.Width > maxW || a.Height > maxH {
			crop = true
		}

		var b bytes.Buffer

		for y := 0; y < a.Height; y++ {
			//discard the data outside the view area
			if y >= maxH {
				break
			}
			if y != 0 {
				b.WriteByte('\n')
			}
			if crop && y == (maxH-1) {
				b.WriteString(aurora.Red("The field size is larger than the viewing area").BgBlack().String())
				break
			}
			for x := 0; x < a.Width && x < maxW; x++ {
				c := a.At(x, y)
				if c.Alive() {
					b.WriteString(t.liveFillers[c.AgeClass()])
				} else {
					b.WriteString(t.deadFiller)
				}
			}
		}
		_, _ = fmt.Fprint(v, b.String())
		return nil
	})
}

func (t *ConsoleUI) renderStatus() {
	s := t.u.Status()
	msg := t.takeMessage()
	t.g.Update(func(g *gocui.Gui) error {
		if v, e := g.View("status"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, renderProp("Generation", "%v", s.Generation))
			_, _ = fmt.Fprintln(v, renderProp("Live Cells", "%v", s.LiveCells))
			_, _ = fmt.Fprintln(v, renderProp("Evaluation time", "%v", s.IterationTime.Round(time.Microsecond)))
			_, _ = fmt.Fprintln(v, renderProp("Mode", "%v", runningStateDescr[s.RunningMode]))
			if msg != "" {
				_, _ = fmt.Fprintln(v, " "+aurora.Red(msg).String())
			}
		}
		return nil
	})
}

func (t *ConsoleUI) renderConfiguration() {
	//it needs to call Update when calls from goroutine
	t.g.Update(func(g *gocui.Gui) error {
		c := t.u.Options()
		if v, e := g.View("configuration"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, renderProp("Dimension", "%v x %v", c.Width, c.Height))
			_, _ = fmt.Fprintln(v, renderProp("Interval", "%v", c.Interval))
			_, _ = fmt.Fprintln(v, renderProp("Max steps", "%v", c.MaxSteps))
		}
		return nil
	})
}

func (t *ConsoleUI) renderRules() {
	s := t.u.Status()
	kind := t.currentEditKind()
	t.g.Update(func(g *gocui.Gui) error {
		if v, e := g.View("rules"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, renderProp("Rules", "%v", rules.Title(s.Rules)))
			_, _ = fmt.Fprintln(v, renderCounts("S", s.RuleSet.Survive(), kind == rules.Survive))
			_, _ = fmt.Fprintln(v, renderCounts("B", s.RuleSet.Born(), kind == rules.Born))
		}
		return nil
	})
}

func renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

//renderCounts draws the 0-8 buttons of one rule set, selected counts are highlighted
func renderCounts(label string, set rules.NeighborSet, editing bool) string {
	var b strings.Builder
	b.WriteByte(' ')
	if editing {
		b.WriteString(aurora.Bold(label + ">").String())
	} else {
		b.WriteString(label + " ")
	}
	for n := 0; n <= rules.MaxNeighbors; n++ {
		b.WriteByte(' ')
		if set.Has(n) {
			b.WriteString(aurora.Colorize(n, aurora.BlackFg|aurora.GreenBg).String())
		} else {
			b.WriteString(aurora.Colorize(n, aurora.BlackFg).String())
		}
	}
	return b.String()
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {

	maxX, maxY := g.Size()

	if maxY < minWindowHeight {
		if _, err := t.headerLayout(g, maxY, "Terminal height too small"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
		for _, name := range []string{"configuration", "status", "rules", "battlefield"} {
			_ = g.DeleteView(name)
		}
		return nil

	}
	if _, err := t.headerLayout(g, 3, "2D cellular automata"); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
	}

	top, bottom := 3, maxY-5
	third := (bottom - top) / 3

	panels := []struct {
		name, title string
		y0, y1      int
		render      func()
	}{
		{"configuration", "Configuration", top, top + third, t.renderConfiguration},
		{"status", "Status", top + third + 1, top + 2*third, t.renderStatus},
		{"rules", "Rules", top + 2*third + 1, bottom, t.renderRules},
	}
	for _, p := range panels {
		if v, err := g.SetView(p.name, 0, p.y0, leftColumnWidth, p.y1); err != nil {
			if err != gocui.ErrUnknownView || v == nil {
				return err
			}
			v.Title = p.title
			v.Frame = true
			p.render()
		}
	}

	if v, err := g.SetView("battlefield", leftColumnWidth+1, top, maxX-1, bottom); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Grid"
		v.Frame = true
		t.renderField(t.u.Area())
	}

	if v, err := g.SetView("help", -1, maxY-5, maxX, maxY-2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		v.Wrap = true
		b := bytes.Buffer{}
		b.WriteString("KEYBINDINGS: ")
		for i, k := range t.k {
			if i != 0 {
				b.WriteString(", ")
			}
			b.WriteString(aurora.Green(k.name).String())
			b.WriteString(": ")
			b.WriteString(k.descr)
		}
		_, _ = fmt.Fprintln(v, b.String())
	}

	return nil
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		pad := 0
		if maxX > len(text) {
			pad = (maxX - len(text)) / 2
		}
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+strings.Repeat(" ", pad)+text)
	}
	return
}

//report keeps a command error for the status panel, ErrClosed ends the UI
func (t *ConsoleUI) report(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, universe.ErrClosed) {
		return gocui.ErrQuit
	}
	t.mu.Lock()
	t.message = err.Error()
	t.mu.Unlock()
	t.renderStatus()
	return nil
}

func (t *ConsoleUI) takeMessage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	msg := t.message
	t.message = ""
	return msg
}

func (t *ConsoleUI) currentEditKind() rules.Kind {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.editKind
}

func (t *ConsoleUI) cmdQuit(_ *gocui.View) error {
	return gocui.ErrQuit
}

func (t *ConsoleUI) cmdNextRound(_ *gocui.View) error {
	return t.report(t.u.Step())
}

func (t *ConsoleUI) cmdRun(_ *gocui.View) error {
	return t.report(t.u.Play())
}

func (t *ConsoleUI) cmdStop(_ *gocui.View) error {
	return t.report(t.u.Pause())
}

func (t *ConsoleUI) cmdClear(_ *gocui.View) error {
	return t.report(t.u.Clear())
}

func (t *ConsoleUI) cmdFill(_ *gocui.View) error {
	return t.report(t.u.Fill())
}

func (t *ConsoleUI) cmdNextRules(_ *gocui.View) error {
	return t.report(t.u.SelectRules(cycleRules(t.u.RuleNames(), t.u.Status().Rules, 1)))
}

func (t *ConsoleUI) cmdPrevRules(_ *gocui.View) error {
	return t.report(t.u.SelectRules(cycleRules(t.u.RuleNames(), t.u.Status().Rules, -1)))
}

func (t *ConsoleUI) cmdSwitchEditKind(_ *gocui.View) error {
	t.mu.Lock()
	if t.editKind == rules.Survive {
		t.editKind = rules.Born
	} else {
		t.editKind = rules.Survive
	}
	t.mu.Unlock()
	t.renderRules()
	return nil
}

func (t *ConsoleUI) cmdToggleRule(n int) error {
	return t.report(t.u.ToggleRule(t.currentEditKind(), n))
}

func (t *ConsoleUI) cmdMouseClick(v *gocui.View) error {
	cx, cy := v.Cursor()
	return t.report(t.u.ToggleCell(cx, cy))
}

//cycleRules returns the name delta positions away from current in names
func cycleRules(names []string, current string, delta int) string {
	if len(names) == 0 {
		return current
	}
	idx := 0
	for i, name := range names {
		if name == current {
			idx = i
			break
		}
	}
	idx = ((idx+delta)%len(names) + len(names)) % len(names)
	return names[idx]
}
