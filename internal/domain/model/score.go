package model

import (
	"math"
	"strings"
)

// ScoreCategory names one 0..100 metric of an analysis.
type ScoreCategory string

// Score categories in display order.
const (
	Relevance                  ScoreCategory = "relevance"
	KeywordOptimization        ScoreCategory = "keyword_optimization"
	FormattingPresentation     ScoreCategory = "formatting_presentation"
	AchievementsQualifications ScoreCategory = "achievements_qualifications"
	BrevityClarity             ScoreCategory = "brevity_clarity"
	FinalScore                 ScoreCategory = "final_score"
)

// ScoreCategories lists every category in canonical order.
var ScoreCategories = []ScoreCategory{
	Relevance,
	KeywordOptimization,
	FormattingPresentation,
	AchievementsQualifications,
	BrevityClarity,
	FinalScore,
}

// Valid reports whether c is a known category.
func (c ScoreCategory) Valid() bool {
	for _, known := range ScoreCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the card label: first underscore replaced by a space, upper-cased.
func (c ScoreCategory) Label() string {
	return strings.ToUpper(strings.Replace(string(c), "_", " ", 1))
}

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// Score is one category value.
type Score struct {
	Category ScoreCategory
	Value    int
}

// Scores maps categories to values in [MinScore, MaxScore].
type Scores map[ScoreCategory]int

// Get returns the value for c and whether it is present.
func (s Scores) Get(c ScoreCategory) (int, bool) {
	v, ok := s[c]
	return v, ok
}

// Ordered returns the present scores in canonical category order.
func (s Scores) Ordered() []Score {
	out := make([]Score, 0, len(s))
	for _, c := range ScoreCategories {
		if v, ok := s[c]; ok {
			out = append(out, Score{Category: c, Value: v})
		}
	}
	return out
}

// ClampScore floors v and clamps it into [MinScore, MaxScore].
func ClampScore(v float64) int {
	if math.IsNaN(v) {
		return MinScore
	}
	v = math.Floor(v)
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return int(v)
}
