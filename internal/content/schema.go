package content

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const packSchemaURL = "schema://content-pack.json"

// packSchema describes a content pack file. Grammar items must carry
// options, the index of the correct one, and an explanation.
const packSchema = `{
  "type": "object",
  "required": ["version", "items"],
  "properties": {
    "version": {"type": "string", "minLength": 2},
    "name": {"type": "string"},
    "items": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["category", "difficulty", "text"],
        "properties": {
          "id": {"type": "string"},
          "category": {"enum": ["sentences", "spelling", "puzzle", "roleplay", "grammar", "meanings"]},
          "difficulty": {"enum": ["easy", "medium", "hard"]},
          "text": {"type": "string", "minLength": 1},
          "hint": {"type": "string"},
          "scenario": {"type": "string"},
          "options": {"type": "array", "minItems": 2, "items": {"type": "string", "minLength": 1}},
          "answer": {"type": "integer", "minimum": 0},
          "explanation": {"type": "string"}
        },
        "if": {"properties": {"category": {"const": "grammar"}}},
        "then": {"required": ["options", "answer", "explanation"]}
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(packSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(packSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(packSchemaURL)
	})
	return compiled, compileErr
}
