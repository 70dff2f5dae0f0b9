// Package normalize turns insight payloads into one renderable shape.
package normalize

import (
	"regexp"
	"strings"

	"github.com/okian/resumeinsight/internal/domain/model"
)

// Bucket is the style class of a verdict.
type Bucket int

// Verdict style buckets.
const (
	// Unstyled is used when no verdict is present.
	Unstyled Bucket = iota
	Positive
	Caution
	Negative
	Info
)

func (b Bucket) String() string {
	switch b {
	case Positive:
		return "positive"
	case Caution:
		return "caution"
	case Negative:
		return "negative"
	case Info:
		return "info"
	default:
		return "unstyled"
	}
}

// Result is the uniform view of a payload.
type Result struct {
	Data       model.Structured
	Verdict    string
	HasVerdict bool
	Bucket     Bucket
	// Legacy is true when Data was derived from free text.
	Legacy bool
}

var (
	verdictPattern = regexp.MustCompile(`(?i)final\s*verdict\s*:?\s*(.+)`)
	boldPattern    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	headingPattern = regexp.MustCompile(`(?m)^#+\s*`)
	emphasisChars  = strings.NewReplacer("*", "", "_", "", "`", "", "~", "")
)

// Normalize converts p into a Result. A nil payload is treated as empty.
func Normalize(p model.Payload) Result {
	switch v := p.(type) {
	case model.LegacyText:
		verdict, ok := ExtractVerdict(v.Raw)
		return Result{
			Data:       model.Structured{Summary: v.Raw},
			Verdict:    verdict,
			HasVerdict: ok,
			Bucket:     Classify(verdict, ok),
			Legacy:     true,
		}
	case model.Structured:
		ok := v.Verdict != ""
		return Result{
			Data:       v,
			Verdict:    v.Verdict,
			HasVerdict: ok,
			Bucket:     Classify(v.Verdict, ok),
		}
	default:
		return Result{}
	}
}

// ExtractVerdict finds the first "final verdict" line in text and returns
// its remainder without markdown decoration.
func ExtractVerdict(text string) (string, bool) {
	m := verdictPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	verdict := StripMarkdown(m[1])
	if verdict == "" {
		return "", false
	}
	return verdict, true
}

// StripMarkdown removes bold, heading, emphasis, code and strike markers.
func StripMarkdown(s string) string {
	s = boldPattern.ReplaceAllString(s, "$1")
	s = headingPattern.ReplaceAllString(s, "")
	s = emphasisChars.Replace(s)
	return strings.TrimSpace(s)
}

// Classify maps a verdict to a style bucket. Matching is a case-insensitive
// substring test in priority order strong, average, weak.
func Classify(verdict string, ok bool) Bucket {
	if !ok {
		return Unstyled
	}
	v := strings.ToLower(verdict)
	switch {
	case strings.Contains(v, "strong"):
		return Positive
	case strings.Contains(v, "average"):
		return Caution
	case strings.Contains(v, "weak"):
		return Negative
	default:
		return Info
	}
}
