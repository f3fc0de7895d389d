// Package tools defines the editing-tool catalog the agent may call.
//
// Tools here are declarative: they describe and validate tool calls, while
// the session owns the actual document mutation. This keeps the agent loop
// free of document state.
//
// Information Hiding:
// - Argument schemas hidden in implementations
// - Registry storage and lookup hidden from consumers
package tools

import (
	"encoding/json"
	"fmt"
)

// ToolParameter defines a parameter schema for a tool.
type ToolParameter struct {
	Name        string `json:"name"`
	ParamType   string `json:"param_type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ToolMetadata describes what a tool does and how to use it.
type ToolMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
}

// String returns a string representation of the tool metadata.
func (m ToolMetadata) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Description)
}

// Tool is the contract every editing tool implements.
type Tool interface {
	// Metadata returns tool metadata (name, description, parameters).
	Metadata() ToolMetadata

	// Validate checks arguments before the call is applied to a document.
	Validate(args json.RawMessage) error
}
