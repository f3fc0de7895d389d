// The three editing tools: insert, remove, replace. Classification
// downstream keys on these exact names.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/richinex/redline/model"
)

// Canonical tool names.
const (
	ToolInsertContent  = "insert_content"
	ToolRemoveContent  = "remove_content"
	ToolReplaceContent = "replace_content"
)

// editArgs is the shared argument schema for the editing tools.
type editArgs struct {
	Text               string              `json:"text,omitempty"`
	Selection          *model.ContentRange `json:"selection,omitempty"`
	Cursor             *int                `json:"cursor,omitempty"`
	ParagraphMinLength *int                `json:"paragraph_min_length,omitempty"`
}

func (a editArgs) hasLocator() bool {
	return a.Selection != nil || a.Cursor != nil || a.ParagraphMinLength != nil
}

func decodeArgs(raw json.RawMessage) (editArgs, error) {
	var args editArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return editArgs{}, fmt.Errorf("invalid arguments: %w", err)
	}
	return args, nil
}

// locatorParams are the shared locator parameters of all editing tools.
func locatorParams() []ToolParameter {
	return []ToolParameter{
		{Name: "selection", ParamType: "object", Description: "Target range as {from, to} byte offsets", Required: false},
		{Name: "cursor", ParamType: "integer", Description: "Caret offset for position-based targeting", Required: false},
		{Name: "paragraph_min_length", ParamType: "integer", Description: "Target the first paragraph longer than this", Required: false},
	}
}

// InsertContentTool adds new text at a position.
type InsertContentTool struct{}

// NewInsertContentTool creates the insertion tool.
func NewInsertContentTool() *InsertContentTool {
	return &InsertContentTool{}
}

// Metadata returns the tool's schema.
func (t *InsertContentTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        ToolInsertContent,
		Description: "Insert new text into the document at a position. Without a locator, inserts at the current cursor.",
		Parameters: append([]ToolParameter{
			{Name: "text", ParamType: "string", Description: "The text to insert", Required: true},
		}, locatorParams()...),
	}
}

// Validate requires non-empty text.
func (t *InsertContentTool) Validate(raw json.RawMessage) error {
	args, err := decodeArgs(raw)
	if err != nil {
		return err
	}
	if args.Text == "" {
		return fmt.Errorf("%s: text is required", ToolInsertContent)
	}
	return nil
}

// RemoveContentTool marks existing text for removal.
type RemoveContentTool struct{}

// NewRemoveContentTool creates the removal tool.
func NewRemoveContentTool() *RemoveContentTool {
	return &RemoveContentTool{}
}

// Metadata returns the tool's schema.
func (t *RemoveContentTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        ToolRemoveContent,
		Description: "Mark a range of existing text for removal. The text stays visible until the change is accepted.",
		Parameters:  locatorParams(),
	}
}

// Validate requires a locator: there is no meaningful default span to
// remove.
func (t *RemoveContentTool) Validate(raw json.RawMessage) error {
	args, err := decodeArgs(raw)
	if err != nil {
		return err
	}
	if !args.hasLocator() {
		return fmt.Errorf("%s: a locator (selection, cursor, or paragraph_min_length) is required", ToolRemoveContent)
	}
	return nil
}

// ReplaceContentTool swaps a range for new text.
type ReplaceContentTool struct{}

// NewReplaceContentTool creates the replacement tool.
func NewReplaceContentTool() *ReplaceContentTool {
	return &ReplaceContentTool{}
}

// Metadata returns the tool's schema.
func (t *ReplaceContentTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        ToolReplaceContent,
		Description: "Replace a range of existing text with new text. Old and new stay visible side by side until reviewed.",
		Parameters: append([]ToolParameter{
			{Name: "text", ParamType: "string", Description: "The replacement text", Required: true},
		}, locatorParams()...),
	}
}

// Validate requires text and a locator.
func (t *ReplaceContentTool) Validate(raw json.RawMessage) error {
	args, err := decodeArgs(raw)
	if err != nil {
		return err
	}
	if args.Text == "" {
		return fmt.Errorf("%s: text is required", ToolReplaceContent)
	}
	if !args.hasLocator() {
		return fmt.Errorf("%s: a locator (selection, cursor, or paragraph_min_length) is required", ToolReplaceContent)
	}
	return nil
}

// Interface checks
var (
	_ Tool = (*InsertContentTool)(nil)
	_ Tool = (*RemoveContentTool)(nil)
	_ Tool = (*ReplaceContentTool)(nil)
)
