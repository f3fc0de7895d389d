package json

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"pure json", `{"a": 1}`, `{"a": 1}`, false},
		{"fenced json", "```json\n{\"a\": 1}\n```", `{"a": 1}`, false},
		{"fenced plain", "```\n{\"a\": 1}\n```", `{"a": 1}`, false},
		{"embedded", `Here is the plan: {"a": 1} hope it helps`, `{"a": 1}`, false},
		{"no json", "just some prose", "", true},
		{"unbalanced", `{"a": `, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONInto(t *testing.T) {
	var decision struct {
		Thought string `json:"thought"`
		IsFinal bool   `json:"is_final"`
	}
	input := "Some commentary.\n```json\n{\"thought\": \"done\", \"is_final\": true}\n```"
	if err := ExtractJSONInto(input, &decision); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Thought != "done" || !decision.IsFinal {
		t.Errorf("unexpected decode: %+v", decision)
	}
}
