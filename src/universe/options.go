package universe

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"automata/src/rules"
)

//default options
const (
	DefSimulationInterval = time.Millisecond * 150
	DefMaxSteps           = 1000
	DefWidth              = 30
	DefHeight             = 20
)

//Options represents the Simulation's configurable options
type Options struct {
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Interval time.Duration `json:"interval"`  //autoplay interval, 0 steps as fast as possible
	MaxSteps int           `json:"max_steps"` //0 means unlimited
	Rules    string        `json:"rules"`     //preset name
	Custom   string        `json:"custom"`    //rule notation, wins over Rules
	Seed     int64         `json:"seed"`
}

var DefaultOptions = Options{
	Width:    DefWidth,
	Height:   DefHeight,
	Interval: DefSimulationInterval,
	MaxSteps: DefMaxSteps,
	Rules:    rules.DefaultName,
}

//LoadOptions loads options from a JSON file on top of DefaultOptions
func LoadOptions(filename string) (Options, error) {
	o := DefaultOptions

	data, err := os.ReadFile(filename)
	if err != nil {
		return o, errors.Wrapf(err, "[LoadOptions] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &o); err != nil {
		return o, errors.Wrapf(err, "[LoadOptions] failed to unmarshal data from file: %+v", filename)
	}

	return o, nil
}
