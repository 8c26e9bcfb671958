package algo

import "github.com/huangsam/flowstate/schema"

// AggregateFlowScore combines the activity, app switch and flow streak
// sub-scores for one window. prior must be ordered most recent first.
// The total is the plain sum of the independently clamped sub-scores,
// so it never exceeds schema.MaxFlowScore.
func AggregateFlowScore(states []schema.ActivityState, prior []schema.FlowPeriod) schema.FlowPeriodScore {
	activity, activeCount := ActivityScore(states)
	appSwitch, meanSwitches := AppSwitchScore(states)
	streak, streakCount := FlowStreakScore(prior)

	return schema.FlowPeriodScore{
		Total: activity + appSwitch + streak,
		Details: schema.FlowPeriodDetails{
			Activity:   schema.SubScore{Score: activity, Detail: float64(activeCount)},
			AppSwitch:  schema.SubScore{Score: appSwitch, Detail: meanSwitches},
			FlowStreak: schema.SubScore{Score: streak, Detail: float64(streakCount)},
		},
	}
}
