package algo

import (
	"slices"
	"sort"

	"github.com/huangsam/flowstate/schema"
)

// MostRecentFirst returns a copy of periods ordered by creation, newest first.
// Creation order is the insertion ID, not the end time, because a period
// created after a gap can end later than one created before it.
func MostRecentFirst(periods []schema.FlowPeriod) []schema.FlowPeriod {
	ordered := slices.Clone(periods)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ID != ordered[j].ID {
			return ordered[i].ID > ordered[j].ID
		}
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})
	return ordered
}

// RankPeriods sorts periods by score in descending order
// and returns the top 'limit' periods. If limit is greater than the number
// of periods, all periods are returned in sorted order.
func RankPeriods(periods []schema.FlowPeriod, limit int) []schema.FlowPeriod {
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].Score > periods[j].Score
	})
	if limit > 0 && len(periods) > limit {
		return periods[:limit]
	}
	return periods
}
