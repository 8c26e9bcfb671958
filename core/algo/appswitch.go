package algo

import "github.com/huangsam/flowstate/schema"

// AppSwitchScore scores context switching by the mean app switches per state.
// Every state counts, active or not. Returns the score and the mean.
func AppSwitchScore(states []schema.ActivityState) (float64, float64) {
	if len(states) == 0 {
		return 0, 0
	}

	var total int
	for _, s := range states {
		total += s.AppSwitches
	}
	mean := float64(total) / float64(len(states))

	switch {
	case mean <= schema.FocusedSwitchMean:
		return schema.FocusedSwitchScore, mean
	case mean <= schema.ModerateSwitchMean:
		return schema.ModerateSwitchScore, mean
	default:
		return 0, mean
	}
}
