package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Answers carry one of two mutually exclusive encodings: the legacy
// positional shape (q1..qN keyed to the frozen legacy ordering) or the
// by-identifier shape (question id keyed to the catalog). The union is
// resolved once per submission by ParseAnswers; scoring never re-detects.
type AnswerKind int

const (
	AnswersLegacy AnswerKind = iota + 1
	AnswersByID
)

type AnswerSet struct {
	Kind           AnswerKind
	Legacy         map[string]int
	ByID           map[string]int
	CatalogVersion int
}

// RawAnswers is the undecoded answer payload as submitted. It is carried
// through the lifecycle gates unparsed so validation errors never mask a
// gate outcome.
type RawAnswers struct {
	Answers        map[string]any
	CatalogVersion int
}

// choiceCount is the fixed number of choices per question; answers are
// integer indices in [0, choiceCount-1].
const choiceCount = 5

var legacyKeyPattern = regexp.MustCompile(`^q[1-9][0-9]*$`)

// ParseAnswers resolves the raw JSON answer object into a tagged AnswerSet.
// An empty object is permitted and parses as an empty by-identifier set;
// mixing positional and identifier keys is rejected.
func ParseAnswers(raw map[string]any, catalogVersion int) (AnswerSet, error) {
	legacy := 0
	for k := range raw {
		if legacyKeyPattern.MatchString(k) {
			legacy++
		}
	}
	if legacy > 0 && legacy != len(raw) {
		return AnswerSet{}, NewInvalidError("answers mix positional and identifier keys")
	}

	values := make(map[string]int, len(raw))
	for k, v := range raw {
		idx, ok := answerIndex(v)
		if !ok {
			return AnswerSet{}, NewInvalidError(fmt.Sprintf("answer %q is not an integer choice index", k))
		}
		if idx < 0 || idx >= choiceCount {
			return AnswerSet{}, NewInvalidError(fmt.Sprintf("answer %q is out of range [0,%d]", k, choiceCount-1))
		}
		values[k] = idx
	}

	if legacy > 0 {
		return AnswerSet{Kind: AnswersLegacy, Legacy: values, CatalogVersion: LegacyCatalogVersion}, nil
	}
	return AnswerSet{Kind: AnswersByID, ByID: values, CatalogVersion: catalogVersion}, nil
}

func answerIndex(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// ScoreResult is the durable scoring snapshot stored on a survey.
type ScoreResult struct {
	Scores CategoryScores `json:"scores"`
	Total  float64        `json:"total"`
}

// Calculator turns an answer set into category scores and a total.
// Scoring is deterministic: identical answers against an identical catalog
// snapshot always produce identical output.
type Calculator struct {
	catalog CatalogStore
}

func NewCalculator(catalog CatalogStore) *Calculator {
	return &Calculator{catalog: catalog}
}

func (c *Calculator) Score(ans AnswerSet) (*ScoreResult, error) {
	switch ans.Kind {
	case AnswersLegacy:
		return scoreLegacy(ans.Legacy)
	case AnswersByID:
		return c.scoreByID(ans.ByID)
	default:
		return nil, NewInvalidError("unrecognized answer shape")
	}
}

// scoreLegacy scores the positional shape against the frozen legacy ordering.
func scoreLegacy(answers map[string]int) (*ScoreResult, error) {
	sums := map[Category]float64{}
	weights := map[Category]float64{}
	for key, idx := range answers {
		n, err := strconv.Atoi(key[1:])
		if err != nil || n < 1 || n > len(legacyQuestionOrder) {
			return nil, NewInvalidError(fmt.Sprintf("unknown positional answer key %q", key))
		}
		lq := legacyQuestionOrder[n-1]
		w := lq.weight
		if w <= 0 {
			w = 1
		}
		sums[lq.category] += choiceScore(idx) * w
		weights[lq.category] += w
	}
	return finishScores(sums, weights), nil
}

// scoreByID scores the identifier shape against the stored catalog. Every
// referenced id must resolve, active or previously valid.
func (c *Calculator) scoreByID(answers map[string]int) (*ScoreResult, error) {
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	questions, err := c.catalog.GetQuestionsByIDs(ids)
	if err != nil {
		return nil, err
	}
	sums := map[Category]float64{}
	weights := map[Category]float64{}
	for id, idx := range answers {
		q, ok := questions[id]
		if !ok || q == nil {
			return nil, NewInvalidError(fmt.Sprintf("answer references unknown question %q", id))
		}
		w := q.Weight
		if w <= 0 {
			w = 1
		}
		sums[q.Category] += choiceScore(idx) * w
		weights[q.Category] += w
	}
	return finishScores(sums, weights), nil
}

// choiceScore maps a choice index 0..4 onto the 0..5 score scale.
func choiceScore(idx int) float64 {
	return float64(idx) / float64(choiceCount-1) * 5
}

func finishScores(sums, weights map[Category]float64) *ScoreResult {
	scores := CategoryScores{}
	var sum float64
	var n int
	for _, cat := range CategoryOrder {
		w := weights[cat]
		if w == 0 {
			continue
		}
		s := round1(sums[cat] / w)
		scores[cat] = s
		sum += s
		n++
	}
	total := 0.0
	if n > 0 {
		total = round1(sum / float64(n))
	}
	return &ScoreResult{Scores: scores, Total: total}
}

// round1 rounds to one decimal place, half away from zero. This is the single
// rounding strategy used across scoring and benchmark deltas.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
