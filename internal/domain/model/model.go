// Package model contains the insight records exchanged with the backend.
package model

import "time"

// Record is one stored analysis result tied to a single uploaded document.
// It is read-only once decoded.
type Record struct {
	DocID    string
	Filename string
	Time     time.Time
	Insights Payload

	// Violations lists schema problems found in a structured payload.
	// They are informational; the record is still usable.
	Violations []string
}

// Payload is either Structured or LegacyText. The variant is fixed at decode time.
type Payload interface {
	payload()
}

// Structured is an analysis with discrete fields. Empty fields are absent.
type Structured struct {
	Verdict              string
	Scores               Scores
	Summary              string
	TechnicalSkills      []string
	WorkExperience       []string
	KeyProjects          []string
	AcademicAchievements []string
	Recommendations      []string

	// Fallback and TopKeywords are set when the backend could not produce
	// a structured summary.
	Fallback    string
	TopKeywords []string
}

// LegacyText is an older analysis stored as a single block of prose.
type LegacyText struct {
	Raw string
}

func (Structured) payload() {}
func (LegacyText) payload() {}

// HasScores reports whether any score is present.
func (s Structured) HasScores() bool { return len(s.Scores) > 0 }
