package services

// Level is a maturity tier derived from a score.
type Level string

const (
	LevelFoundation Level = "foundation"
	LevelCore       Level = "core"
	LevelAdvanced   Level = "advanced"
)

// LevelFor classifies a score. Thresholds are inclusive on the lower band:
// exactly 2.5 is foundation, exactly 3.8 is core.
func LevelFor(score float64) Level {
	switch {
	case score <= 2.5:
		return LevelFoundation
	case score <= 3.8:
		return LevelCore
	default:
		return LevelAdvanced
	}
}

// LevelsFor classifies every present category score.
func LevelsFor(scores CategoryScores) map[Category]Level {
	out := make(map[Category]Level, len(scores))
	for cat, s := range scores {
		out[cat] = LevelFor(s)
	}
	return out
}
