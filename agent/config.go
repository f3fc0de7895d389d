// Agent configuration.
//
// Information Hiding:
// - Default values hidden
package agent

// Config holds the editing agent's configuration.
type Config struct {
	// Name identifies the agent in logs.
	Name string

	// SystemPrompt guides the agent's editing behavior. The tool catalog
	// and document context are appended automatically.
	SystemPrompt string

	// MaxStages bounds the number of LLM round trips per prompt.
	MaxStages int
}

// DefaultConfig returns the editing agent's default configuration.
func DefaultConfig() Config {
	return Config{
		Name: "editor",
		SystemPrompt: "You are a precise document editing assistant. " +
			"You revise the user's document by calling editing tools. " +
			"Make the smallest set of edits that satisfies the request and never rewrite text the user did not ask about.",
		MaxStages: 8,
	}
}

// normalized fills in zero values with defaults.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.Name == "" {
		c.Name = def.Name
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = def.SystemPrompt
	}
	if c.MaxStages <= 0 {
		c.MaxStages = def.MaxStages
	}
	return c
}
