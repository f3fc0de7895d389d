// Package agent drives the LLM editing loop and emits the staged
// response protocol consumed by the stream aggregator.
//
// Contains the decision types parsed out of LLM responses.
package agent

import (
	"encoding/json"
)

// Decision represents one step decided by the LLM.
type Decision struct {
	Thought string  `json:"thought"`
	Action  *Action `json:"action,omitempty"`
	IsFinal bool    `json:"is_final"`
	Summary *string `json:"summary,omitempty"`
}

// UnmarshalJSON implements custom unmarshaling that accepts either a string
// or JSON value for Summary.
func (d *Decision) UnmarshalJSON(data []byte) error {
	// Use an alias to avoid infinite recursion
	type DecisionAlias Decision
	aux := &struct {
		Summary json.RawMessage `json:"summary,omitempty"`
		*DecisionAlias
	}{
		DecisionAlias: (*DecisionAlias)(d),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if len(aux.Summary) > 0 {
		var s string
		if err := json.Unmarshal(aux.Summary, &s); err == nil {
			d.Summary = &s
			return nil
		}

		// Not a string; pretty-print the JSON value instead.
		var v interface{}
		if err := json.Unmarshal(aux.Summary, &v); err == nil {
			pretty, err := json.MarshalIndent(v, "", "  ")
			if err == nil {
				s := string(pretty)
				d.Summary = &s
			}
		}
	}

	return nil
}

// Action represents a tool call decided by the LLM.
type Action struct {
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input"`
}
