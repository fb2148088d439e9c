package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/integrii/flaggy"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"automata/src/rules"
	"automata/src/universe"
	"automata/src/view"
)

var (
	testSample = universe.Template{
		Name:  "sample",
		Descr: "the test sample with 3 stable patterns",
		Coordinates: [][2]int{
			{1, 1}, {1, 2},
			{2, 1}, {2, 2},
			{3, 3},
			{4, 2},
			{4, 3},
			{5, 3},
		},
	}
)

type EnvOptions struct {
	interactive bool
	randomData  bool
	template    string
	configFile  string
	listRules   bool
}

func main() {
	eo, uo, err := initOptions()
	if err != nil {
		log.Fatal(err)
	}

	if eo.listRules {
		printRules(os.Stdout, rules.NewDefaultRegistry())
		return
	}

	if err := run(eo, uo); err != nil {
		log.Fatal(err)
	}
}

func run(eo *EnvOptions, uo *universe.Options) error {
	var stateCh chan universe.Status

	if !eo.interactive {
		stateCh = make(chan universe.Status, 10) //the buffered channel to getting the simulation status
	}

	u, err := universe.NewSimulation(uo, rules.NewDefaultRegistry(), stateCh)
	if err != nil {
		return err
	}
	u.AddTemplate(testSample)

	var v universe.Viewer
	if eo.interactive {
		if v, err = view.NewViewTerminal(); err != nil {
			return err
		}
	} else {
		v = view.NewConsoleOut(os.Stdout)
	}
	u.RegisterViewer(v)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	eg, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg.Go(func() error {
		return u.Run(ctx)
	})

	if err := settle(u, eo); err != nil {
		cancel()
		_ = eg.Wait()
		return err
	}

	if eo.interactive {
		eg.Go(func() error {
			defer cancel()
			return v.Start()
		})
	} else {
		_ = v.Start()
		if err := u.Play(); err != nil {
			cancel()
			_ = eg.Wait()
			return err
		}
		eg.Go(func() error {
			defer cancel()
			waitFinished(ctx, stateCh)
			return nil
		})
	}

	return eg.Wait()
}

//settle seeds the grid: the random initial state is kept with -r, otherwise the template is placed in the centre
func settle(u *universe.Simulation, eo *EnvOptions) error {
	if eo.randomData {
		return nil
	}
	tmpl, err := u.Template(eo.template)
	if err != nil {
		return err
	}
	if err := u.Clear(); err != nil {
		return err
	}
	x, y := centre(u.Options(), tmpl)
	return u.SettleTemplate(tmpl.Name, x, y)
}

//centre returns the top-left position that centres tmpl on the grid
func centre(o universe.Options, tmpl universe.Template) (x, y int) {
	w, h := tmpl.Size()
	x = (o.Width - w) / 2
	y = (o.Height - h) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return
}

func waitFinished(ctx context.Context, stateCh chan universe.Status) {
	for {
		select {
		case st := <-stateCh:
			if st.RunningMode == universe.RunningStateFinished {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func initOptions() (eo *EnvOptions, uo *universe.Options, err error) {

	flags := universe.DefaultOptions
	eo = &EnvOptions{template: testSample.Name}

	flaggy.SetName("automata")
	flaggy.SetDescription("2D cellular automata simulation with survive/born rule sets")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true

	rulesCmd := flaggy.NewSubcommand("rules")
	rulesCmd.Description = "List the rule presets"
	flaggy.AttachSubcommand(rulesCmd, 1)

	flaggy.Int(&flags.Width, "x", "width", "Width of a simulation field")
	flaggy.Int(&flags.Height, "y", "height", "Height of a simulation field")
	flaggy.Duration(&flags.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&flags.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps, 0 for no limit")
	flaggy.String(&flags.Rules, "u", "rules", "Rule preset name, see the rules subcommand")
	flaggy.String(&flags.Custom, "c", "custom", "Custom rules in B/S notation, for example B36/S23")
	flaggy.Int64(&flags.Seed, "", "seed", "Random seed, 0 picks one from the clock")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.Bool(&eo.randomData, "r", "random", "Keep the random initial state instead of a template")
	flaggy.String(&eo.template, "t", "template", "Seeding template [sample|block|blinker|toad|beacon|glider]")
	flaggy.String(&eo.configFile, "f", "config", "JSON file with the simulation options, flags override it")

	flaggy.Parse()

	eo.listRules = rulesCmd.Used

	o := flags
	if eo.configFile != "" {
		fileOptions, err := universe.LoadOptions(eo.configFile)
		if err != nil {
			return nil, nil, err
		}
		o = mergeOptions(fileOptions, flags, universe.DefaultOptions)
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.Custom != "" {
		if _, err := rules.Parse(o.Custom); err != nil {
			return nil, nil, errors.Wrap(err, "[initOptions] --custom")
		}
	}

	if !eo.interactive && !eo.listRules {
		flaggy.ShowHelp("")
	}

	return eo, &o, nil
}

//mergeOptions lays the flags that differ from the defaults over the file options
func mergeOptions(file, flags, defaults universe.Options) universe.Options {
	o := file
	if flags.Width != defaults.Width {
		o.Width = flags.Width
	}
	if flags.Height != defaults.Height {
		o.Height = flags.Height
	}
	if flags.Interval != defaults.Interval {
		o.Interval = flags.Interval
	}
	if flags.MaxSteps != defaults.MaxSteps {
		o.MaxSteps = flags.MaxSteps
	}
	if flags.Rules != defaults.Rules {
		o.Rules = flags.Rules
	}
	if flags.Custom != defaults.Custom {
		o.Custom = flags.Custom
	}
	if flags.Seed != defaults.Seed {
		o.Seed = flags.Seed
	}
	return o
}

//printRules writes the preset table in selection-list order
func printRules(w io.Writer, registry *rules.Registry) {
	active, _ := registry.Active()
	for _, name := range registry.Names() {
		rs, _ := registry.Lookup(name)
		title := rules.Title(name)
		if name == active {
			title = aurora.Bold(title).String()
		}
		fmt.Fprintf(w, "  %-16s %s %s\n", name, aurora.Colorize(rs.String(), aurora.CyanFg), title)
	}
}
