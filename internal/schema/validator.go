package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	js "github.com/santhosh-tekuri/jsonschema/v5"
)

// respondSchema describes the body of the claim respond endpoint
const respondSchema = `{
	"type": "object",
	"required": ["responses"],
	"properties": {
		"responses": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["item_id", "response"],
				"properties": {
					"item_id": {"type": "string", "minLength": 1},
					"response": {"enum": ["accept", "partial_accept", "reject"]},
					"counter_amount": {"type": ["number", "null"]},
					"explanation": {"type": "string"},
					"evidence_photos": {"type": "array", "items": {"type": "string"}},
					"evidence_documents": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`

const respondSchemaURL = "mem://deposits/respond.json"

// Validator compiles the endpoint schemas on demand and caches the compiled
// form.
type Validator struct {
	cache *expirable.LRU[string, *js.Schema]
}

func NewValidator(maxSize int) *Validator {
	return &Validator{
		cache: expirable.NewLRU[string, *js.Schema](maxSize, nil, time.Hour),
	}
}

func (v *Validator) compiled(url, source string) (*js.Schema, error) {
	if sch, ok := v.cache.Get(url); ok {
		return sch, nil
	}

	compiler := js.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(source)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	sch, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	v.cache.Add(url, sch)
	return sch, nil
}

// ValidateRespond checks a decoded respond payload against the endpoint
// schema.
func (v *Validator) ValidateRespond(doc interface{}) error {
	sch, err := v.compiled(respondSchemaURL, respondSchema)
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("respond payload is invalid: %w", err)
	}
	return nil
}
