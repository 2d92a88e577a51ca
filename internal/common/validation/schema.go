// Package validation checks job variables and results against JSON schemas.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema defines the structure for input/output schemas
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties *bool               `json:"additionalProperties,omitempty"`
}

type Property struct {
	Type        string              `json:"type"`
	Description string              `json:"description,omitempty"`
	Default     interface{}         `json:"default,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty"`
	Maximum     *float64            `json:"maximum,omitempty"`
	Enum        []interface{}       `json:"enum,omitempty"`
	Pattern     string              `json:"pattern,omitempty"`
	MinLength   *int                `json:"minLength,omitempty"`
	MaxLength   *int                `json:"maxLength,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Float returns a pointer for Minimum and Maximum.
func Float(v float64) *float64 { return &v }

// ValidateInput validates job variables against schema. Null variables are treated
// as absent, since the engine keeps them in scope after they were cleared.
func ValidateInput(input map[string]interface{}, schema JSONSchema) *ValidationResult {
	present := make(map[string]interface{}, len(input))
	for k, v := range input {
		if v != nil {
			present[k] = v
		}
	}

	result, err := ValidateDocument(present, schema)
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "(schema)",
			Message: err.Error(),
			Code:    "INVALID_SCHEMA",
		}}}
	}
	return result
}

// ValidateDocument validates any JSON-compatible value. schema may be a JSONSchema,
// a decoded JSON map or a JSON string. The error is non-nil only when the schema
// itself cannot be used.
func ValidateDocument(document interface{}, schema interface{}) (*ValidationResult, error) {
	var schemaLoader gojsonschema.JSONLoader
	if s, ok := schema.(string); ok {
		schemaLoader = gojsonschema.NewStringLoader(s)
	} else {
		schemaLoader = gojsonschema.NewGoLoader(schema)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   fieldOf(desc),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return &ValidationResult{Valid: result.Valid(), Errors: errs}, nil
}

// fieldOf names the offending property. Required errors are reported on the parent,
// so the missing property is appended.
func fieldOf(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if desc.Type() != "required" {
		return field
	}
	prop, _ := desc.Details()["property"].(string)
	if field == "" || field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
		return prop
	}
	return field + "." + prop
}

var activityNamePattern = regexp.MustCompile(`^[a-z]+\.[a-z]+\.[a-z]+$`)

// ValidateActivityNaming validates activity ID follows naming convention
func ValidateActivityNaming(activityID string) error {
	if !activityNamePattern.MatchString(activityID) {
		return fmt.Errorf("activity ID %q must follow format: domain.subdomain.action (e.g., solar.roi.calculate)", activityID)
	}
	return nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}
