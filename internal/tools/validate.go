package tools

import "fmt"

// ValidationError is raised before any network call when the supplied
// arguments do not satisfy the tool's input schema.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateParams checks the arguments against the schema: every required
// parameter must be present and non-empty, declared parameters must have
// the declared type, and enum parameters must hold one of the allowed
// values. Extra parameters are tolerated.
func ValidateParams(schema InputSchema, args map[string]interface{}) error {
	for _, name := range schema.Required {
		val, ok := args[name]
		if !ok || val == nil {
			return &ValidationError{Message: fmt.Sprintf("missing required parameter: %s", name)}
		}
		if s, isString := val.(string); isString && s == "" {
			return &ValidationError{Message: fmt.Sprintf("missing required parameter: %s", name)}
		}
	}

	for name, prop := range schema.Properties {
		val, ok := args[name]
		if !ok || val == nil {
			continue
		}
		switch prop.Type {
		case "string":
			s, isString := val.(string)
			if !isString {
				return &ValidationError{Message: fmt.Sprintf("parameter %s must be a string", name)}
			}
			if len(prop.Enum) > 0 && s != "" && !contains(prop.Enum, s) {
				return &ValidationError{Message: fmt.Sprintf("parameter %s must be one of %v", name, prop.Enum)}
			}
		case "number":
			if _, isNumber := val.(float64); !isNumber {
				return &ValidationError{Message: fmt.Sprintf("parameter %s must be a number", name)}
			}
		case "boolean":
			if _, isBool := val.(bool); !isBool {
				return &ValidationError{Message: fmt.Sprintf("parameter %s must be a boolean", name)}
			}
		case "array":
			if _, isArray := val.([]interface{}); !isArray {
				return &ValidationError{Message: fmt.Sprintf("parameter %s must be an array", name)}
			}
		}
	}

	return nil
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
