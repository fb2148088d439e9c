package view

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"

	"automata/src/rules"
	"automata/src/universe"
)

const (
	gridPosBlock = "██"
	gridPosEmpty = "  "

	//maxPrintedWidth limits the final frame printout
	maxPrintedWidth = 80
)

//ConsoleOut prints the progress of a headless run
type ConsoleOut struct {
	u         universe.Universe
	w         io.Writer
	startTime time.Time
	lastMode  universe.RunningState
	every     int
}

//NewConsoleOut reports progress every 10 generations
func NewConsoleOut(w io.Writer) *ConsoleOut {
	return &ConsoleOut{w: w, every: 10}
}

func (c *ConsoleOut) Refresh() {
	st := c.u.Status()
	defer func() { c.lastMode = st.RunningMode }()

	if st.RunningMode == universe.RunningStateFinished {
		if c.lastMode == universe.RunningStateFinished {
			return
		}
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		resultData := map[string]interface{}{
			"Last generation": st.Generation,
			"Total time":      totalTime,
			"Live cells":      st.LiveCells,
			"Rules":           st.Rules + " " + st.RuleSet.String(),
		}
		fmt.Fprintln(c.w, aurora.Red("\nFinished:"))
		c.printHashData(resultData)
		c.printArea(c.u.Area())
	} else if st.RunningMode == universe.RunningStateRun {
		if st.Generation > 0 && st.Generation%c.every == 0 {
			fmt.Fprintf(c.w, "  Generations done: %v, live cells: %v\n", st.Generation, st.LiveCells)
		}
	}
}

func (c *ConsoleOut) Register(u universe.Universe) {
	c.u = u
	o := c.u.Options()
	st := c.u.Status()
	fmt.Fprintln(c.w, aurora.Green("Running configuration:"))
	c.printHashData(map[string]interface{}{
		"Dimension":      fmt.Sprintf("%v x %v", o.Width, o.Height),
		"Interval":       o.Interval,
		"Max generation": o.MaxSteps,
		"Rules":          rules.Title(st.Rules) + " " + st.RuleSet.String(),
	})
}

func (c *ConsoleOut) Start() error {
	c.startTime = time.Now()
	fmt.Fprintln(c.w, "\nSimulation started...")
	return nil
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		fmt.Fprintf(c.w, "  %s: %v\n", aurora.Colorize(propName, aurora.GreenFg), d[propName])
	}
}

//printArea renders the final generation, wide grids are not printed
func (c *ConsoleOut) printArea(a universe.Area) {
	if a.Width > maxPrintedWidth {
		return
	}
	var b strings.Builder
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			if a.At(x, y).Alive() {
				b.WriteString(gridPosBlock)
			} else {
				b.WriteString(gridPosEmpty)
			}
		}
		b.WriteByte('\n')
	}
	fmt.Fprint(c.w, b.String())
}
