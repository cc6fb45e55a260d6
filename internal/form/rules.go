package form

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	MaxTitle       = 100
	MaxDescription = 500
)

// schemaURL is the in-memory resource name the rules compile under.
const schemaURL = "tada://todo-form.schema.json"

// The declarative rules for the free-text fields. Due-date rules need
// a clock and live in checkDue.
var schemaSource = fmt.Sprintf(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "title": {"type": "string", "minLength": 1, "maxLength": %d, "pattern": "\\S"},
    "description": {"type": "string", "maxLength": %d}
  }
}`, MaxTitle, MaxDescription)

// messages maps field -> failing keyword -> what the user sees.
var messages = map[Field]map[string]string{
	FieldTitle: {
		"minLength": "Title is required",
		"pattern":   "Title is required",
		"maxLength": fmt.Sprintf("Title cannot exceed %d characters", MaxTitle),
	},
	FieldDescription: {
		"maxLength": fmt.Sprintf("Description cannot exceed %d characters", MaxDescription),
	},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaSource)); err != nil {
			compileErr = fmt.Errorf("add form schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
	})
	return compiled, compileErr
}

// checkText validates title and description against the schema and
// returns the first message per field.
func checkText(v Values) (map[Field]string, error) {
	sch, err := schema()
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON so the validator sees plain JSON values.
	raw, err := json.Marshal(map[string]string{
		"title":       v.Title,
		"description": v.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal form: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal form: %w", err)
	}

	errs := make(map[Field]string)
	if err := sch.Validate(doc); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, err
		}
		collect(ve, errs)
	}
	return errs, nil
}

func collect(ve *jsonschema.ValidationError, errs map[Field]string) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collect(cause, errs)
		}
		return
	}
	field := Field(lastSegment(ve.InstanceLocation))
	if _, seen := errs[field]; seen {
		return
	}
	if msg, ok := messages[field][lastSegment(ve.KeywordLocation)]; ok {
		errs[field] = msg
		return
	}
	errs[field] = ve.Message
}

func lastSegment(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "#")
	if i := strings.LastIndex(pointer, "/"); i >= 0 {
		return pointer[i+1:]
	}
	return pointer
}
