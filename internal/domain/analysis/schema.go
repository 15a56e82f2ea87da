package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateResult runs strict structural validation over a decoded result.
// Any violation makes the candidate's response invalid as a whole.
func ValidateResult(result *Result) error {
	if result == nil {
		return fmt.Errorf("nil result")
	}
	if err := validate.Struct(result); err != nil {
		return fmt.Errorf("result schema validation: %w", err)
	}
	return nil
}

// ResultSchema is the structured-output contract sent with every trial so
// the remote model constrains its own response to the five-field shape.
var ResultSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "woundType": {
      "type": "string",
      "description": "Short name of the wound type, e.g. Scrape (Abrasion)"
    },
    "severity": {
      "type": "string",
      "enum": ["Low", "Medium", "High"]
    },
    "description": {
      "type": "string",
      "description": "One or two sentences describing what is visible"
    },
    "firstAidSteps": {
      "type": "array",
      "items": {"type": "string"},
      "minItems": 1
    },
    "recommendation": {
      "type": "string",
      "description": "Follow-up guidance including the mandatory disclaimer"
    }
  },
  "required": ["woundType", "severity", "description", "firstAidSteps", "recommendation"],
  "additionalProperties": false
}`)
