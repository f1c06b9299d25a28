package production

import (
	"fmt"
	"math"
)

// RefreshStep is one starter refresh instruction on the preparation sheet.
type RefreshStep struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// refreshStage is one constant stage of a refresh schedule. A zero target
// means "the required mass".
type refreshStage struct {
	initial  float64
	target   float64
	waterPct float64
}

// proportionalLine expresses a refresh ingredient as a mass fraction of the
// required quantity.
type proportionalLine struct {
	share float64
	name  string
}

// starterProfile holds the refresh constants of one starter type. The
// numbers are kitchen constants, not derived values.
type starterProfile struct {
	// reserve is kept back as the next seed culture, on top of the
	// required mass.
	reserve float64
	flour   string
	stages  map[int][]refreshStage
	// proportional profiles are built in a single step from fractions.
	proportional []proportionalLine
}

var starterProfiles = map[string]starterProfile{
	"Levain froment": {
		flour: "Farine de froment",
		stages: map[int][]refreshStage{
			2: {{100, 300, 60}, {300, 0, 50}},
			3: {{100, 1000, 65}, {1000, 3000, 50}, {3000, 0, 40}},
		},
	},
	"Levain sarrasin": {
		reserve: 20,
		flour:   "Farine de sarrasin",
		stages: map[int][]refreshStage{
			2: {{20, 100, 50}, {100, 0, 50}},
			3: {{20, 100, 50}, {100, 300, 50}, {300, 0, 43}},
		},
	},
	"Levain de petit épeautre": {
		proportional: []proportionalLine{
			{7.0 / 110, "Levain froment"},
			{58.0 / 110, "Farine de petit épeautre"},
			{44.0 / 110, "Eau"},
			{1.0 / 110, "Sel"},
		},
	},
}

// RefreshPlan derives the refresh steps needed to grow the named starter to
// the required mass. It is a pure function of its inputs; an unknown starter
// yields an empty plan. Steps must be 2 or 3; anything else falls back to
// the 2-step schedule.
func RefreshPlan(name string, required float64, steps int) []RefreshStep {
	profile, ok := starterProfiles[name]
	if !ok || required <= 0 {
		return nil
	}
	if profile.proportional != nil {
		return proportionalPlan(profile, required)
	}
	stages, ok := profile.stages[steps]
	if !ok {
		stages = profile.stages[2]
	}
	final := required + profile.reserve
	plan := make([]RefreshStep, 0, len(stages))
	for i, stage := range stages {
		target := stage.target
		if target == 0 {
			target = final
		}
		missing := target - stage.initial
		water := roundGrams(missing * stage.waterPct / 100)
		flour := roundGrams(missing - water)
		culture := "starter"
		if i == 0 {
			culture = "seed starter"
		}
		plan = append(plan, RefreshStep{
			Title: fmt.Sprintf("Refresh %d (target %.0f g)", i+1, target),
			Lines: []string{
				fmt.Sprintf("%.0f g of %s", stage.initial, culture),
				fmt.Sprintf("%.0f g of warm water (%.0f%%)", water, stage.waterPct),
				fmt.Sprintf("%.0f g of %s (%.0f%%)", flour, profile.flour, 100-stage.waterPct),
			},
		})
	}
	return plan
}

func proportionalPlan(profile starterProfile, required float64) []RefreshStep {
	step := RefreshStep{
		Title: fmt.Sprintf("Refresh 1 (target %.0f g)", required),
	}
	for _, line := range profile.proportional {
		step.Lines = append(step.Lines, fmt.Sprintf("%.0f g of %s", line.share*required, line.name))
	}
	return []RefreshStep{step}
}

func roundGrams(v float64) float64 {
	return math.Round(v)
}
