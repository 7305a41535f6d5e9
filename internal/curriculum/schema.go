package curriculum

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const subjectSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name", "chapters"],
  "properties": {
    "id":   {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 1},
    "icon": {"type": "string"},
    "chapters": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "grade"],
        "properties": {
          "id":    {"type": "string", "minLength": 1},
          "name":  {"type": "string"},
          "grade": {"type": "string", "minLength": 1}
        }
      }
    },
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "chapter_id", "grade", "text", "options", "answer"],
        "properties": {
          "id":          {"type": "string", "minLength": 1},
          "chapter_id":  {"type": "string", "minLength": 1},
          "grade":       {"type": "string", "minLength": 1},
          "difficulty":  {"enum": ["easy", "medium", "hard"]},
          "text":        {"type": "string", "minLength": 1},
          "options":     {"type": "array", "minItems": 2, "items": {"type": "string"}},
          "answer":      {"type": "integer", "minimum": 0},
          "explanation": {"type": "string"}
        }
      }
    },
    "revision": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "chapter_id", "grade", "type", "topic", "content", "question"],
        "properties": {
          "id":         {"type": "string", "minLength": 1},
          "chapter_id": {"type": "string", "minLength": 1},
          "grade":      {"type": "string", "minLength": 1},
          "type":       {"enum": ["formula", "concept", "term"]},
          "topic":      {"type": "string"},
          "content":    {"type": "string"},
          "question": {
            "type": "object",
            "required": ["text", "options", "answer"],
            "properties": {
              "text":    {"type": "string", "minLength": 1},
              "options": {"type": "array", "minItems": 2, "items": {"type": "string"}},
              "answer":  {"type": "integer", "minimum": 0}
            }
          }
        }
      }
    }
  }
}`

var subjectSchema = mustCompileSchema(subjectSchemaJSON)

func mustCompileSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("curriculum: invalid embedded schema: %v", err))
	}
	return s
}

// validateDocument checks a decoded YAML document against the subject schema.
func validateDocument(doc any) error {
	result, err := subjectSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validating document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema: %s", strings.Join(msgs, "; "))
}
