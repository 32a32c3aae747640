package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const gradeSchemaURL = "schema://writing-grade.json"

const gradeSchemaJSON = `{
  "type": "object",
  "properties": {
    "score": {"type": "number", "minimum": 0},
    "feedback": {"type": "string"}
  },
  "required": ["score", "feedback"],
  "additionalProperties": false
}`

var gradeSchema = mustCompileGradeSchema()

func mustCompileGradeSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(gradeSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("parse grade schema: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(gradeSchemaURL, doc); err != nil {
		panic(fmt.Sprintf("add grade schema: %v", err))
	}
	return c.MustCompile(gradeSchemaURL)
}

func jsonOutputInstruction(maxPoints float64) string {
	return fmt.Sprintf(`Respond with a single JSON object and nothing else:
{"score": <number from 0 to %.0f>, "feedback": "<constructive feedback naming strengths, the most important errors with a corrected example for each, and one priority for improvement>"}
`, maxPoints)
}

// decodeGradePayload validates a JSON grading response and clamps the score.
func decodeGradePayload(raw string, maxPoints float64) (GradeResult, error) {
	raw = stripCodeFence(raw)

	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return GradeResult{}, fmt.Errorf("grader returned invalid JSON: %w", err)
	}
	if err := gradeSchema.Validate(inst); err != nil {
		return GradeResult{}, fmt.Errorf("grader response failed schema validation: %w", err)
	}

	var payload struct {
		Score    float64 `json:"score"`
		Feedback string  `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return GradeResult{}, fmt.Errorf("decode grader response: %w", err)
	}
	return newGradeResult(payload.Score, maxPoints, payload.Feedback), nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
