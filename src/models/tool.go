package models

// MToolDefinition describes a registered tool the way MCP clients expect it.
type MToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// MToolResult is the envelope returned by a tool call.
type MToolResult struct {
	Tool      string                 `json:"tool,omitempty"`
	Result    map[string]interface{} `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Available []string               `json:"available,omitempty"`
	Success   bool                   `json:"success"`
	Timestamp string                 `json:"timestamp,omitempty"`
}
