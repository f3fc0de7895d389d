// Narrative: the single progressively-updated message built from agent
// stages. One narrative per prompt; sections are appended in place, never
// as new chat messages.
package stream

import (
	"fmt"
	"strings"
)

// Narrative folds stage content into one growing message.
type Narrative struct {
	sections []string
	final    bool
}

// NewNarrative creates an empty narrative.
func NewNarrative() *Narrative {
	return &Narrative{}
}

// AddSection appends a labeled section. No-op once the narrative is final.
func (n *Narrative) AddSection(label, content string) {
	if n.final {
		return
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	n.sections = append(n.sections, fmt.Sprintf("**%s**\n%s", label, content))
}

// AddToolLine appends a one-line tool indicator.
func (n *Narrative) AddToolLine(line string) {
	if n.final {
		return
	}
	n.sections = append(n.sections, line)
}

// UpdateLastToolLine replaces the most recent tool indicator line. Used
// when a running tool resolves to success or failure.
func (n *Narrative) UpdateLastToolLine(line string) {
	if n.final || len(n.sections) == 0 {
		return
	}
	n.sections[len(n.sections)-1] = line
}

// Finish appends the closing section and marks the narrative permanent.
func (n *Narrative) Finish(summary string) {
	if n.final {
		return
	}
	n.AddSection("Complete", summary)
	n.final = true
}

// Final reports whether the narrative is permanent.
func (n *Narrative) Final() bool {
	return n.final
}

// Empty reports whether no section has been added yet.
func (n *Narrative) Empty() bool {
	return len(n.sections) == 0
}

// Render returns the full message text.
func (n *Narrative) Render() string {
	return strings.Join(n.sections, "\n\n")
}
