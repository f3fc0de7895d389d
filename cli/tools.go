package cli

import (
	"fmt"
	"os"

	"github.com/richinex/redline/tools"
)

// ListTools prints the editing tool catalog.
func ListTools(verbose bool) {
	registry, err := tools.WithEditingTools()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	if verbose {
		fmt.Println(registry.Description())
		return
	}

	fmt.Println("Available tools:")
	for _, name := range registry.Names() {
		tool, _ := registry.Get(name)
		fmt.Printf("  %-16s %s\n", name, tool.Metadata().Description)
	}
}
