package tools

import (
	"bytes"
	"encoding/json"
)

func getString(args map[string]interface{}, key string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return ""
}

func getStringDefault(args map[string]interface{}, key, def string) string {
	if val := getString(args, key); val != "" {
		return val
	}
	return def
}

func getBool(args map[string]interface{}, key string) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return false
}

func getInt(args map[string]interface{}, key string) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	return 0
}

func getStringArray(args map[string]interface{}, key string) []string {
	val, ok := args[key]
	if !ok {
		return nil
	}

	arr, ok := val.([]interface{})
	if !ok {
		return nil
	}

	result := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

// prettyJSON renders a raw JSON payload indented for the result envelope.
// Payloads that are not valid JSON come back unchanged.
func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// prettyValue marshals a Go value indented for the result envelope.
func prettyValue(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
