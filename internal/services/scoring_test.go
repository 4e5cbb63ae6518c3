package services

import (
	"reflect"
	"strings"
	"testing"
)

type stubCatalog struct {
	questions map[string]*Question
}

func newStubCatalog(qs ...*Question) *stubCatalog {
	m := make(map[string]*Question, len(qs))
	for _, q := range qs {
		m[q.ID] = q
	}
	return &stubCatalog{questions: m}
}

func (s *stubCatalog) ListActiveQuestions() ([]*Question, error) {
	out := make([]*Question, 0, len(s.questions))
	for _, q := range s.questions {
		if q.Active {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *stubCatalog) GetQuestionsByIDs(ids []string) (map[string]*Question, error) {
	out := make(map[string]*Question, len(ids))
	for _, id := range ids {
		if q, ok := s.questions[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func TestParseAnswersShapes(t *testing.T) {
	legacy, err := ParseAnswers(map[string]any{"q1": float64(4), "q2": float64(0)}, 0)
	if err != nil {
		t.Fatalf("ParseAnswers legacy returned error: %v", err)
	}
	if legacy.Kind != AnswersLegacy {
		t.Fatalf("kind = %v, want legacy", legacy.Kind)
	}
	if legacy.CatalogVersion != LegacyCatalogVersion {
		t.Fatalf("catalog version = %d, want %d", legacy.CatalogVersion, LegacyCatalogVersion)
	}

	byID, err := ParseAnswers(map[string]any{"sec_access": float64(3)}, 2)
	if err != nil {
		t.Fatalf("ParseAnswers by-id returned error: %v", err)
	}
	if byID.Kind != AnswersByID || byID.CatalogVersion != 2 {
		t.Fatalf("unexpected by-id set: %+v", byID)
	}

	if _, err := ParseAnswers(map[string]any{"q1": float64(1), "sec_access": float64(2)}, 0); err == nil {
		t.Fatalf("expected error for mixed answer shapes")
	}
	if _, err := ParseAnswers(map[string]any{"q1": float64(7)}, 0); err == nil {
		t.Fatalf("expected error for out-of-range choice index")
	}
	if _, err := ParseAnswers(map[string]any{"q1": float64(1.5)}, 0); err == nil {
		t.Fatalf("expected error for non-integer choice")
	}

	empty, err := ParseAnswers(map[string]any{}, 0)
	if err != nil {
		t.Fatalf("empty answers should be permitted: %v", err)
	}
	if empty.Kind != AnswersByID || len(empty.ByID) != 0 {
		t.Fatalf("unexpected empty set: %+v", empty)
	}
}

func TestScoreLegacyDeterministic(t *testing.T) {
	calc := NewCalculator(newStubCatalog())
	ans := AnswerSet{Kind: AnswersLegacy, Legacy: map[string]int{
		"q1": 4, "q2": 2, "q3": 3, "q4": 1, "q5": 0, "q6": 4,
		"q7": 2, "q10": 3, "q13": 4,
	}}

	first, err := calc.Score(ans)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	second, err := calc.Score(ans)
	if err != nil {
		t.Fatalf("Score returned error on second call: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("scoring is not deterministic: %+v vs %+v", first, second)
	}
	for cat, s := range first.Scores {
		if s < 0 || s > 5 {
			t.Fatalf("score for %s out of range: %v", cat, s)
		}
	}
}

func TestScoreLegacyRoundingMidpoint(t *testing.T) {
	calc := NewCalculator(newStubCatalog())
	// Max and min answer in the same category must land on 2.5 exactly.
	res, err := calc.Score(AnswerSet{Kind: AnswersLegacy, Legacy: map[string]int{"q1": 4, "q2": 0}})
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if got := res.Scores[CategoryCollaboration]; got != 2.5 {
		t.Fatalf("collaboration score = %v, want 2.5", got)
	}
	if res.Total != 2.5 {
		t.Fatalf("total = %v, want 2.5", res.Total)
	}
}

func TestScoreLegacyAbsentCategories(t *testing.T) {
	calc := NewCalculator(newStubCatalog())
	res, err := calc.Score(AnswerSet{Kind: AnswersLegacy, Legacy: map[string]int{"q4": 4}})
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if len(res.Scores) != 1 {
		t.Fatalf("expected single category, got %+v", res.Scores)
	}
	if _, ok := res.Scores[CategoryCollaboration]; ok {
		t.Fatalf("unanswered category must be absent, not zero")
	}
	if res.Scores[CategorySecurity] != 5 {
		t.Fatalf("security score = %v, want 5", res.Scores[CategorySecurity])
	}
	if res.Total != 5 {
		t.Fatalf("total = %v, want 5 (mean of present categories only)", res.Total)
	}
}

func TestScoreLegacyUnknownKey(t *testing.T) {
	calc := NewCalculator(newStubCatalog())
	_, err := calc.Score(AnswerSet{Kind: AnswersLegacy, Legacy: map[string]int{"q99": 1}})
	if err == nil {
		t.Fatalf("expected error for unknown positional key")
	}
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorInvalid {
		t.Fatalf("expected invalid error, got %v", err)
	}
}

func TestScoreEmptyAnswerSet(t *testing.T) {
	calc := NewCalculator(newStubCatalog())
	res, err := calc.Score(AnswerSet{Kind: AnswersByID, ByID: map[string]int{}})
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if len(res.Scores) != 0 || res.Total != 0 {
		t.Fatalf("expected all-absent result, got %+v", res)
	}
}

func TestScoreByIDWeighted(t *testing.T) {
	catalog := newStubCatalog(
		&Question{ID: "sec_access", Category: CategorySecurity, Weight: 2, Active: true},
		&Question{ID: "sec_backup", Category: CategorySecurity, Weight: 1, Active: true},
		&Question{ID: "collab_tools", Category: CategoryCollaboration, Active: true},
	)
	calc := NewCalculator(catalog)
	res, err := calc.Score(AnswerSet{Kind: AnswersByID, ByID: map[string]int{
		"sec_access":   4, // 5.0 at weight 2
		"sec_backup":   0, // 0.0 at weight 1
		"collab_tools": 2, // 2.5, zero weight defaults to 1
	}})
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if got := res.Scores[CategorySecurity]; got != 3.3 {
		t.Fatalf("security score = %v, want 3.3 (weighted 10/3 rounded)", got)
	}
	if got := res.Scores[CategoryCollaboration]; got != 2.5 {
		t.Fatalf("collaboration score = %v, want 2.5", got)
	}
	if res.Total != 2.9 {
		t.Fatalf("total = %v, want 2.9 (mean of 3.3 and 2.5)", res.Total)
	}
}

func TestScoreByIDUnresolvableID(t *testing.T) {
	calc := NewCalculator(newStubCatalog(
		&Question{ID: "sec_access", Category: CategorySecurity, Active: true},
	))
	_, err := calc.Score(AnswerSet{Kind: AnswersByID, ByID: map[string]int{"ghost_question": 1}})
	if err == nil {
		t.Fatalf("expected error for unresolvable question id")
	}
	if !strings.Contains(err.Error(), "ghost_question") {
		t.Fatalf("error should name the offending id, got %q", err.Error())
	}
}

func TestRound1HalfAwayFromZero(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{2.45, 2.5},
		{2.44, 2.4},
		{-2.45, -2.5},
		{3.75, 3.8},
		{0, 0},
	}
	for _, c := range cases {
		if got := round1(c.in); got != c.want {
			t.Fatalf("round1(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
