package tools

// Tool is one externally invocable operation with a declared name,
// argument schema, and handler.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Items       *ItemType `json:"items,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Default     string    `json:"default,omitempty"`
}

type ItemType struct {
	Type string `json:"type"`
}

// Helper constructors for schema properties

func stringProp(desc string) Property {
	return Property{Type: "string", Description: desc}
}

func stringPropDefault(desc, def string) Property {
	return Property{Type: "string", Description: desc, Default: def}
}

func enumProp(desc string, values []string, def string) Property {
	return Property{Type: "string", Description: desc, Enum: values, Default: def}
}

func stringArrayProp(desc string) Property {
	return Property{Type: "array", Description: desc, Items: &ItemType{Type: "string"}}
}

func boolProp(desc string) Property {
	return Property{Type: "boolean", Description: desc}
}

func numberProp(desc string) Property {
	return Property{Type: "number", Description: desc}
}
