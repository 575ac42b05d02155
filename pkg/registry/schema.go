package registry

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// validateConfigSchema validates a stage config against the JSON schema
// published by the agent factory. A nil schema skips validation.
func validateConfigSchema(schema map[string]any, config map[string]any) error {
	if schema == nil {
		return nil
	}

	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, resultError := range result.Errors() {
			messages = append(messages, resultError.String())
		}

		return fmt.Errorf("JSON schema validation failed: %s", strings.Join(messages, "; "))
	}

	return nil
}
