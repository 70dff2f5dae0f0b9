package model

import (
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

const structuredSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "verdict": {"type": "string"},
    "summary": {"type": "string"},
    "scores": {
      "type": "object",
      "propertyNames": {
        "enum": [
          "relevance",
          "keyword_optimization",
          "formatting_presentation",
          "achievements_qualifications",
          "brevity_clarity",
          "final_score"
        ]
      },
      "additionalProperties": {"type": "integer", "minimum": 0, "maximum": 100}
    },
    "technical_skills": {"$ref": "#/definitions/textList"},
    "work_experience": {"$ref": "#/definitions/textList"},
    "key_projects": {"$ref": "#/definitions/textList"},
    "academic_achievements": {"$ref": "#/definitions/textList"},
    "recommendations": {"$ref": "#/definitions/textList"},
    "fallback": {"type": "string"},
    "top_keywords": {"$ref": "#/definitions/textList"}
  },
  "definitions": {
    "textList": {"type": "array", "items": {"type": "string"}}
  }
}`

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(structuredSchema))
})

// ValidateStructured checks a structured payload against the expected shape
// and returns one message per violation. Decoding tolerates every violation.
func ValidateStructured(raw []byte) []string {
	schema, err := loadSchema()
	if err != nil {
		return []string{err.Error()}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return []string{err.Error()}
	}
	if result.Valid() {
		return nil
	}

	out := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		out = append(out, e.String())
	}
	return out
}
