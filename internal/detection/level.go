package detection

// ChangeLevel is a coarse bucket of the similarity percentage.
type ChangeLevel string

// Change levels, from most to least changed.
const (
	LevelCritical ChangeLevel = "critical"
	LevelHigh     ChangeLevel = "high"
	LevelMedium   ChangeLevel = "medium"
	LevelLow      ChangeLevel = "low"
)

// Classify maps a similarity percentage to its change level. Lower bounds
// are inclusive: [0,30) critical, [30,60) high, [60,85) medium, [85,100] low.
func Classify(similarityPercent float64) ChangeLevel {
	switch {
	case similarityPercent < 30:
		return LevelCritical
	case similarityPercent < 60:
		return LevelHigh
	case similarityPercent < 85:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Description returns the caller-facing word for the level.
func (l ChangeLevel) Description() string {
	switch l {
	case LevelCritical:
		return "major"
	case LevelHigh:
		return "significant"
	case LevelMedium:
		return "moderate"
	case LevelLow:
		return "minor"
	default:
		return "unknown"
	}
}

// Interpretation returns a one-sentence reading of the level for reports.
func (l ChangeLevel) Interpretation() string {
	switch l {
	case LevelCritical:
		return "Very low similarity: the images may show different scenes, or the scene changed almost entirely."
	case LevelHigh:
		return "Large parts of the scene changed."
	case LevelMedium:
		return "Notable differences are present, possibly gradual or seasonal change."
	case LevelLow:
		return "Only small changes are present."
	default:
		return ""
	}
}
