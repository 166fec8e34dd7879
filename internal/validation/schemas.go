package validation

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

const (
	SchemaLogImport    = "log-import"
	SchemaMatchOutcome = "match-outcome"
)

//go:embed schemas/*.json
var embeddedSchemas embed.FS

var schemaFiles = map[string]string{
	SchemaLogImport:    "log-import.json",
	SchemaMatchOutcome: "match-outcome.json",
}

// SchemaValidator validates request bodies against JSON schemas before they
// are bound into structs.
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{
		schemas: make(map[string]*gojsonschema.Schema),
	}
}

// NewDefaultSchemaValidator loads the schemas compiled into the binary.
func NewDefaultSchemaValidator() (*SchemaValidator, error) {
	sv := NewSchemaValidator()
	if err := sv.LoadSchemaFromFS(embeddedSchemas, "schemas"); err != nil {
		return nil, err
	}
	return sv, nil
}

// LoadSchemaFromFS loads schemas from an embedded filesystem
func (sv *SchemaValidator) LoadSchemaFromFS(fsys fs.FS, schemaDir string) error {
	for name, filename := range schemaFiles {
		schemaBytes, err := fs.ReadFile(fsys, path.Join(schemaDir, filename))
		if err != nil {
			return fmt.Errorf("failed to read schema file %s: %w", filename, err)
		}

		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
		if err != nil {
			return fmt.Errorf("failed to load schema %s: %w", name, err)
		}
		sv.schemas[name] = schema
	}
	return nil
}

func (sv *SchemaValidator) ValidateLogImport(data interface{}) *ValidationResult {
	return sv.validate(SchemaLogImport, data)
}

func (sv *SchemaValidator) ValidateMatchOutcome(data interface{}) *ValidationResult {
	return sv.validate(SchemaMatchOutcome, data)
}

// GetAvailableSchemas returns the loaded schema names in sorted order.
func (sv *SchemaValidator) GetAvailableSchemas() []string {
	names := make([]string, 0, len(sv.schemas))
	for name := range sv.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (sv *SchemaValidator) validate(schemaName string, data interface{}) *ValidationResult {
	schema, exists := sv.schemas[schemaName]
	if !exists {
		return invalid(ValidationError{
			Field:   "schema",
			Message: fmt.Sprintf("Schema '%s' not found", schemaName),
			Code:    "SCHEMA_NOT_FOUND",
		})
	}

	var documentLoader gojsonschema.JSONLoader
	switch v := data.(type) {
	case string:
		documentLoader = gojsonschema.NewStringLoader(v)
	case []byte:
		documentLoader = gojsonschema.NewBytesLoader(v)
	default:
		jsonBytes, err := json.Marshal(data)
		if err != nil {
			return invalid(ValidationError{
				Field:   "data",
				Message: fmt.Sprintf("Failed to marshal data to JSON: %v", err),
				Code:    "JSON_MARSHAL_ERROR",
			})
		}
		documentLoader = gojsonschema.NewBytesLoader(jsonBytes)
	}

	result, err := schema.Validate(documentLoader)
	if err != nil {
		return invalid(ValidationError{
			Field:   "body",
			Message: fmt.Sprintf("Malformed JSON: %v", err),
			Code:    "INVALID_JSON",
		})
	}

	validationResult := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		validationResult.Errors = append(validationResult.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    "VALIDATION_ERROR",
			Value:   e.Value(),
			Context: e.Context().String(),
		})
	}
	return validationResult
}

func invalid(e ValidationError) *ValidationResult {
	return &ValidationResult{Valid: false, Errors: []ValidationError{e}}
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Value   interface{} `json:"value,omitempty"`
	Context string      `json:"context,omitempty"`
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", ve.Field, ve.Message)
}

// FieldErrors groups messages by field for API error details.
func (vr *ValidationResult) FieldErrors() map[string][]string {
	fieldErrors := make(map[string][]string)
	for _, err := range vr.Errors {
		if err.Field != "" {
			fieldErrors[err.Field] = append(fieldErrors[err.Field], err.Message)
		}
	}
	return fieldErrors
}
