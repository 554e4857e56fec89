package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/spaced-go/internal/utils"
)

const schemaURL = "spaced-config.schema.json"

// Schema is the JSON Schema the merged configuration must satisfy.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "spaced configuration",
  "type": "object",
  "required": ["task_file", "growth_factor", "max_interval", "log_level", "log_format"],
  "additionalProperties": false,
  "properties": {
    "task_file": {"type": "string", "minLength": 1},
    "growth_factor": {"type": "number", "exclusiveMinimum": 1},
    "max_interval": {"type": "integer", "minimum": 1, "maximum": 36500},
    "intervals": {
      "type": ["array", "null"],
      "items": {"type": "integer", "minimum": 1, "maximum": 36500}
    },
    "log_level": {"enum": ["debug", "info", "warn", "error"]},
    "log_format": {"enum": ["text", "json", "logfmt"]},
    "log_timestamps": {"type": "boolean"},
    "log_caller": {"type": "boolean"},
    "log_dir": {"type": "string"},
    "log_journal": {"type": "boolean"},
    "hook_command": {"type": "string"}
  }
}`

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

func configSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(schemaURL, strings.NewReader(Schema)); err != nil {
			compiledSchemaErr = fmt.Errorf("add config schema: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, compiledSchemaErr
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // Dotted path to the offending field
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks the configuration against Schema. The returned error joins
// one *ValidationError per violation.
func (c *Config) Validate() error {
	schema, err := configSchema()
	if err != nil {
		return err
	}

	// Round-trip through JSON so the validator sees plain JSON values.
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config for validation: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal config for validation: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		var errs []error
		collectSchemaErrors(&errs, ve)
		return errors.Join(errs...)
	}
	return nil
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}
