package universe

import (
	"context"
	"testing"

	"automata/src/rules"
)

var (
	testTemplate = Template{"ts1", "", [][2]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}, {3, 3}, {4, 2}, {4, 3}, {5, 3}}}

	benchRules = []string{"life", "day_and_night", "seeds"}
)

const (
	width  = 200
	height = 200
)

func newBenchOptions() *Options {
	o := DefaultOptions
	o.Interval = 0
	o.Width = width
	o.Height = height
	o.MaxSteps = 100
	return &o
}

func Benchmark_GridStep(b *testing.B) {
	registry := rules.NewDefaultRegistry()
	for _, name := range benchRules {
		b.Run(name, func(b *testing.B) {
			rs, _ := registry.Lookup(name)
			g, err := NewGrid(width, height, 1)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				g.Step(rs)
			}
		})
	}
}

func Benchmark_Simulation(b *testing.B) {
	seeds := map[string]func(u *Simulation) error{
		"random": func(u *Simulation) error { return u.Fill() },
		"template": func(u *Simulation) error {
			if err := u.Clear(); err != nil {
				return err
			}
			return u.SettleTemplate(testTemplate.Name, width/2, height/2)
		},
	}
	for _, name := range []string{"random", "template"} {
		b.Run(name, func(b *testing.B) {
			simulationRun(b, seeds[name])
		})
	}
}

func simulationRun(b *testing.B, seed func(u *Simulation) error) {
	stateCh := make(chan Status, 10)
	u, err := NewSimulation(newBenchOptions(), nil, stateCh)
	if err != nil {
		b.Fatal(err)
	}
	u.AddTemplate(testTemplate)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- u.Run(ctx) }()

	//drain statuses so the loop never blocks on publishing
	finished := make(chan struct{})
	go func() {
		for st := range stateCh {
			if st.RunningMode == RunningStateFinished {
				finished <- struct{}{}
			}
		}
	}()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		if err := seed(u); err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		_ = u.Play()
		<-finished
	}
	b.StopTimer()
	cancel()
	<-done
	close(stateCh)
}
