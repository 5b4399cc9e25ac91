// Package validation wraps JSON Schema validation for request bodies and
// provider payloads.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON Schema.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
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

// Compile parses a JSON Schema document.
func Compile(name, schemaJSON string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

// MustCompile is like Compile but panics on an invalid schema. Use it for
// package-level schemas only.
func MustCompile(name, schemaJSON string) *Schema {
	s, err := Compile(name, schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Name() string { return s.name }

// Validate checks an already-decoded Go value (maps, slices, structs).
func (s *Schema) Validate(document interface{}) *ValidationResult {
	return s.validate(gojsonschema.NewGoLoader(document))
}

// ValidateJSON checks a raw JSON document.
func (s *Schema) ValidateJSON(body []byte) *ValidationResult {
	return s.validate(gojsonschema.NewBytesLoader(body))
}

func (s *Schema) validate(loader gojsonschema.JSONLoader) *ValidationResult {
	result, err := s.schema.Validate(loader)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_DOCUMENT",
			}},
		}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}

	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errs,
	}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Error joins every message, for logging and error details.
func (vr *ValidationResult) Error() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

var (
	emailPattern        = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern        = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)
	permissionIDPattern = regexp.MustCompile(`^[a-z_]+\.[a-z_]+$`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone validates basic phone number format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidatePermissionID checks the "<resource>.<action>" naming convention.
func ValidatePermissionID(id string) error {
	if !permissionIDPattern.MatchString(id) {
		return fmt.Errorf("permission ID must follow format: resource.action (e.g., leads.view), got %q", id)
	}
	return nil
}
