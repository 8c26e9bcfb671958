package algo

import "github.com/huangsam/flowstate/schema"

// FlowStreakScore counts the leading run of periods scoring above the streak
// threshold. periods must be ordered most recent first. The score is capped at
// schema.MaxFlowStreak; the uncapped run length is returned alongside.
func FlowStreakScore(periods []schema.FlowPeriod) (float64, int) {
	streak := 0
	for _, p := range periods {
		if p.Score <= schema.FlowStreakThreshold {
			break
		}
		streak++
	}
	return float64(min(streak, schema.MaxFlowStreak)), streak
}
