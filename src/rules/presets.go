package rules

import "strings"

const (
	//DefaultName is the preset active after start-up
	DefaultName = "life"
	//CustomName is the single mutable slot
	CustomName = "custom"
)

//Preset is one row of the preset table
type Preset struct {
	Name    string
	Survive []int
	Born    []int
}

//Presets is the built-in table in selection-list order
var Presets = []Preset{
	{"life", []int{2, 3}, []int{3}},
	{"two_by_two", []int{3, 6}, []int{1, 2, 5}},
	{"three_four_life", []int{3, 4}, []int{3, 4}},
	{"amoeba", []int{1, 3, 5, 8}, []int{3, 5, 6}},
	{"assimilation", []int{4, 5, 6, 7}, []int{3, 4, 5}},
	{"coagulations", []int{2, 3, 5, 6, 7, 8}, []int{3, 7, 8}},
	{"coral", []int{4, 5, 6, 7, 8}, []int{3}},
	{"day_and_night", []int{3, 4, 6, 7, 8}, []int{3, 6, 7, 8}},
	{"diamoeba", []int{5, 6, 7, 8}, []int{3, 5, 6, 7, 8}},
	{"flakes", []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, []int{3}},
	{"gnarl", []int{1}, []int{1}},
	{"high_life", []int{2, 3}, []int{3, 6}},
	{"long_life", []int{5}, []int{3, 4, 5}},
	{"maze", []int{1, 2, 3, 4, 5}, []int{3}},
	{"mazectric", []int{1, 2, 3, 4}, []int{3}},
	{"move", []int{2, 4, 5}, []int{3, 6, 8}},
	{"pseudo_life", []int{2, 3, 8}, []int{3, 5, 7}},
	{"replicator", []int{1, 3, 5, 7}, []int{1, 3, 5, 7}},
	{"seeds", nil, []int{2}},
	{"serviettes", nil, []int{2, 3, 4}},
	{"stains", []int{2, 3, 5, 6, 7, 8}, []int{3, 6, 7, 8}},
	{"walled_cities", []int{2, 3, 4, 5}, []int{4, 5, 6, 7, 8}},
	{CustomName, nil, nil},
}

//Title turns a preset name into its display form: day_and_night -> day and night
func Title(name string) string {
	return strings.Join(strings.Split(name, "_"), " ")
}
