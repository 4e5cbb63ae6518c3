package services

import "testing"

func TestLevelForBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  Level
	}{
		{0, LevelFoundation},
		{2.5, LevelFoundation},
		{2.51, LevelCore},
		{3.8, LevelCore},
		{3.81, LevelAdvanced},
		{5, LevelAdvanced},
	}
	for _, c := range cases {
		if got := LevelFor(c.score); got != c.want {
			t.Fatalf("LevelFor(%v) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestLevelsFor(t *testing.T) {
	levels := LevelsFor(CategoryScores{
		CategorySecurity:      1.2,
		CategorySkillsCulture: 4.4,
	})
	if len(levels) != 2 {
		t.Fatalf("expected levels for present categories only, got %+v", levels)
	}
	if levels[CategorySecurity] != LevelFoundation || levels[CategorySkillsCulture] != LevelAdvanced {
		t.Fatalf("unexpected levels: %+v", levels)
	}
}
