package filterbox

import (
	"fmt"
	"math"
	"sort"
)

// Choice is one selectable option for a filter key. JSON tags follow the
// payload emitted by the filter query endpoint.
type Choice struct {
	ID     string  `json:"id"`
	Label  string  `json:"text"`
	Filter string  `json:"filter,omitempty"`
	Weight float64 `json:"metric"`
}

// ChoiceSet holds the ordered choices for each filter key.
type ChoiceSet map[string][]Choice

// Keys returns the filter keys sorted alphabetically.
func (c ChoiceSet) Keys() []string {
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy whose slices do not alias c.
func (c ChoiceSet) Clone() ChoiceSet {
	if c == nil {
		return nil
	}
	out := make(ChoiceSet, len(c))
	for key, choices := range c {
		out[key] = cloneChoices(choices)
	}
	return out
}

func cloneChoices(choices []Choice) []Choice {
	if choices == nil {
		return nil
	}
	out := make([]Choice, len(choices))
	copy(out, choices)
	return out
}

// FilterField names a filterable column and its display label.
type FilterField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// DisplayOption is a choice prepared for a select control. Percent is the
// choice weight relative to the heaviest choice of the same key.
type DisplayOption struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	Percent   int    `json:"percent"`
	Synthetic bool   `json:"synthetic,omitempty"`
}

// DisplayOptions converts choices into select options with weights
// normalised against the maximum weight. A non-positive maximum yields 0%
// for every option.
func DisplayOptions(choices []Choice) []DisplayOption {
	if len(choices) == 0 {
		return nil
	}
	maxWeight := math.Inf(-1)
	for _, choice := range choices {
		if choice.Weight > maxWeight {
			maxWeight = choice.Weight
		}
	}
	out := make([]DisplayOption, len(choices))
	for i, choice := range choices {
		label := choice.Label
		if label == "" {
			label = choice.ID
		}
		out[i] = DisplayOption{
			Value:   choice.ID,
			Label:   label,
			Percent: weightPercent(choice.Weight, maxWeight),
		}
	}
	return out
}

func weightPercent(weight, maxWeight float64) int {
	if maxWeight <= 0 || math.IsNaN(maxWeight) || math.IsInf(maxWeight, 0) {
		return 0
	}
	perc := math.Round(weight / maxWeight * 100)
	if math.IsNaN(perc) || perc < 0 {
		return 0
	}
	return int(perc)
}

// choiceID renders a selected value the way choice identifiers are written.
func choiceID(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
