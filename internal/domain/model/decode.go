package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are tried in order. Zone-less forms are interpreted as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

type recordJSON struct {
	DocID    string          `json:"doc_id"`
	Filename string          `json:"filename"`
	Time     *string         `json:"time,omitempty"`
	Insights json.RawMessage `json:"insights"`
}

type structuredJSON struct {
	Verdict              string         `json:"verdict,omitempty"`
	Scores               map[string]int `json:"scores,omitempty"`
	Summary              string         `json:"summary,omitempty"`
	TechnicalSkills      []string       `json:"technical_skills,omitempty"`
	WorkExperience       []string       `json:"work_experience,omitempty"`
	KeyProjects          []string       `json:"key_projects,omitempty"`
	AcademicAchievements []string       `json:"academic_achievements,omitempty"`
	Recommendations      []string       `json:"recommendations,omitempty"`
	Fallback             string         `json:"fallback,omitempty"`
	TopKeywords          []string       `json:"top_keywords,omitempty"`
}

// UnmarshalJSON decodes a backend record and resolves its payload variant.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrDecodeRecord, err)
	}

	var ts time.Time
	if raw.Time != nil && *raw.Time != "" {
		parsed, err := ParseTime(*raw.Time)
		if err != nil {
			return err
		}
		ts = parsed
	}

	payload, err := DecodePayload(raw.Insights)
	if err != nil {
		return err
	}

	var violations []string
	if _, ok := payload.(Structured); ok {
		violations = ValidateStructured(raw.Insights)
	}

	*r = Record{
		DocID:      raw.DocID,
		Filename:   raw.Filename,
		Time:       ts,
		Insights:   payload,
		Violations: violations,
	}
	return nil
}

// MarshalJSON encodes the record in the backend's wire shape.
func (r Record) MarshalJSON() ([]byte, error) {
	insights, err := EncodePayload(r.Insights)
	if err != nil {
		return nil, err
	}
	out := recordJSON{
		DocID:    r.DocID,
		Filename: r.Filename,
		Insights: insights,
	}
	if !r.Time.IsZero() {
		ts := r.Time.UTC().Format(time.RFC3339Nano)
		out.Time = &ts
	}
	return json.Marshal(out)
}

// ParseTime parses the backend timestamp forms.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

// DecodePayload resolves raw insights JSON into a Payload:
// a string is LegacyText, an object is Structured, null or empty is an
// empty Structured.
func DecodePayload(raw json.RawMessage) (Payload, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Structured{}, nil
	}

	switch raw[0] {
	case '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeRecord, err)
		}
		return LegacyText{Raw: text}, nil
	case '{':
		return decodeStructured(raw)
	default:
		return nil, fmt.Errorf("%w: starts with %q", ErrUnsupportedPayload, raw[0])
	}
}

// EncodePayload is the inverse of DecodePayload.
func EncodePayload(p Payload) (json.RawMessage, error) {
	switch v := p.(type) {
	case nil:
		return json.RawMessage("null"), nil
	case LegacyText:
		return json.Marshal(v.Raw)
	case Structured:
		out := structuredJSON{
			Verdict:              v.Verdict,
			Summary:              v.Summary,
			TechnicalSkills:      v.TechnicalSkills,
			WorkExperience:       v.WorkExperience,
			KeyProjects:          v.KeyProjects,
			AcademicAchievements: v.AcademicAchievements,
			Recommendations:      v.Recommendations,
			Fallback:             v.Fallback,
			TopKeywords:          v.TopKeywords,
		}
		if len(v.Scores) > 0 {
			out.Scores = make(map[string]int, len(v.Scores))
			for c, val := range v.Scores {
				out.Scores[string(c)] = val
			}
		}
		return json.Marshal(out)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPayload, p)
	}
}

func decodeStructured(raw json.RawMessage) (Structured, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Structured{}, fmt.Errorf("%w: %w", ErrDecodeRecord, err)
	}

	return Structured{
		Verdict:              decodeText(fields["verdict"]),
		Scores:               decodeScores(fields["scores"]),
		Summary:              decodeText(fields["summary"]),
		TechnicalSkills:      decodeList(fields["technical_skills"]),
		WorkExperience:       decodeList(fields["work_experience"]),
		KeyProjects:          decodeList(fields["key_projects"]),
		AcademicAchievements: decodeList(fields["academic_achievements"]),
		Recommendations:      decodeList(fields["recommendations"]),
		Fallback:             decodeText(fields["fallback"]),
		TopKeywords:          decodeList(fields["top_keywords"]),
	}, nil
}

// decodeScores keeps known categories with numeric values, floored and clamped.
func decodeScores(raw json.RawMessage) Scores {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || len(entries) == 0 {
		return nil
	}

	scores := make(Scores, len(entries))
	for key, value := range entries {
		category := ScoreCategory(strings.ToLower(strings.TrimSpace(key)))
		if !category.Valid() {
			continue
		}
		if v, ok := decodeNumber(value); ok {
			scores[category] = ClampScore(v)
		}
	}
	if len(scores) == 0 {
		return nil
	}
	return scores
}

func decodeNumber(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// decodeText returns a string value, or compact JSON for other non-null values.
func decodeText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return buf.String()
}

// decodeList accepts an array of values or a single value.
func decodeList(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if s := decodeText(raw); s != "" {
			return []string{s}
		}
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := decodeText(item); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
