package schema

// Score label values.
const (
	PeakLabel     = "Peak"
	HighLabel     = "High"
	ModerateLabel = "Moderate"
	LowLabel      = "Low"
)

// EnrichedFlowPeriod adds presentation data to a FlowPeriod.
type EnrichedFlowPeriod struct {
	Label string `json:"label"`
	FlowPeriod
}

// GetPlainLabel returns a plain text label for a flow score on the 0-10 scale.
// High matches the threshold at which a period extends a streak.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 8:
		return PeakLabel
	case score > FlowStreakThreshold:
		return HighLabel
	case score >= 3:
		return ModerateLabel
	default:
		return LowLabel
	}
}

// EnrichPeriods adds labels to a list of flow periods.
func EnrichPeriods(periods []FlowPeriod) []EnrichedFlowPeriod {
	output := make([]EnrichedFlowPeriod, len(periods))
	for i, p := range periods {
		output[i] = EnrichedFlowPeriod{
			Label:      GetPlainLabel(p.Score),
			FlowPeriod: p,
		}
	}
	return output
}
