// Command execution for CLI commands.
//
// Information Hiding:
// - Provider and session setup hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/richinex/redline/agent"
	"github.com/richinex/redline/config"
	"github.com/richinex/redline/llm"
	"github.com/richinex/redline/preview"
	"github.com/richinex/redline/session"
	"github.com/richinex/redline/storage"
	"github.com/richinex/redline/stream"
	"github.com/richinex/redline/tools"
)

// Options holds CLI execution options.
type Options struct {
	Provider string
	DBPath   string
	Verbose  bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		Provider: "anthropic",
		DBPath:   ".redline/redline.db",
	}
}

// ImportDocument loads a file into storage as a new document baseline.
func ImportDocument(ctx context.Context, documentID, filePath string, opts Options) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	store, err := storage.OpenSqlite(opts.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if err := store.SaveDocument(ctx, documentID, string(content)); err != nil {
		return fmt.Errorf("failed to import document: %w", err)
	}

	fmt.Printf("Imported %s as document '%s' (%d bytes)\n", filePath, documentID, len(content))
	return nil
}

// ExportDocument writes the current baseline of a document to a file.
func ExportDocument(ctx context.Context, documentID, filePath string, opts Options) error {
	store, err := storage.OpenSqlite(opts.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	snap, err := store.FetchDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	if err := os.WriteFile(filePath, []byte(snap.Content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filePath, err)
	}

	fmt.Printf("Exported document '%s' to %s (%d bytes)\n", documentID, filePath, len(snap.Content))
	return nil
}

// Review starts the interactive editing loop for a document: prompts go to
// the agent, proposed changes are previewed, and verdicts are applied with
// :accept, :reject, and :regen.
func Review(ctx context.Context, documentID string, opts Options) error {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}

	provider, err := createProvider(settings)
	if err != nil {
		return err
	}

	store, err := storage.OpenSqlite(opts.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	registry, err := tools.WithEditingTools()
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if opts.Verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
	}

	service := agent.New(provider, registry, agent.Config{
		MaxStages: settings.Engine.MaxStages,
	}, logger)

	sess, err := session.Open(ctx, documentID, store, service, logger)
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			return fmt.Errorf("document '%s' not found; import it first with: redline import", documentID)
		}
		return err
	}
	sess.WithParagraphMinLength(settings.Engine.ParagraphMinLength)

	fmt.Printf("Editing '%s' with %s (%s). Type a request, or :help for commands.\n\n",
		documentID, provider.Name(), provider.Model())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, ":") {
			if quit := runCommand(ctx, sess, input); quit {
				break
			}
			continue
		}

		outcome, err := sess.Submit(ctx, input, session.SubmitOptions{})
		if errors.Is(err, session.ErrBatchPending) {
			fmt.Println("A batch is awaiting review. Use :accept, :reject, or :regen first.")
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		printOutcome(outcome)
	}

	return nil
}

// runCommand handles one colon command. Returns true when the loop should
// end.
func runCommand(ctx context.Context, sess *session.Session, input string) bool {
	switch input {
	case ":quit", ":exit":
		return true

	case ":help":
		fmt.Println("Commands:")
		fmt.Println("  :accept   commit the pending changes")
		fmt.Println("  :reject   discard the pending changes")
		fmt.Println("  :regen    discard and regenerate from the last request")
		fmt.Println("  :show     print the current document")
		fmt.Println("  :quit     leave the session")

	case ":accept":
		if err := sess.Accept(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}
		fmt.Println("Changes accepted.")

	case ":reject":
		if err := sess.Reject(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}
		fmt.Println("Changes rejected.")

	case ":regen":
		outcome, err := sess.Regenerate(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}
		printOutcome(outcome)

	case ":show":
		fmt.Println(sess.Document().Content())

	default:
		fmt.Printf("Unknown command %s (try :help)\n", input)
	}
	return false
}

// printOutcome renders the agent's narrative and, when changes landed,
// their preview.
func printOutcome(outcome session.Outcome) {
	switch outcome.Result.State {
	case stream.StateErrored:
		fmt.Printf("\n%s\n\n", outcome.Result.ErrorText)
		return
	case stream.StateAborted:
		fmt.Println("\nRequest cancelled.")
	default:
		if outcome.Result.Message != "" {
			fmt.Printf("\n%s\n\n", outcome.Result.Message)
		}
	}

	if outcome.Preview != nil {
		printPreview(*outcome.Preview)
		fmt.Println("Review with :accept, :reject, or :regen.")
	}
}

// printPreview renders the change list as a unified text diff.
func printPreview(p preview.Preview) {
	s := p.Summary
	fmt.Printf("Proposed changes: %d additions, %d removals, %d replacements (%d total",
		s.Additions, s.Removals, s.Replacements, s.Total)
	if s.Skipped > 0 {
		fmt.Printf(", %d skipped", s.Skipped)
	}
	fmt.Println(")")

	for i, change := range p.Changes {
		fmt.Printf("\n[%d] %s at %s\n", i+1, change.Kind, change.Range)
		for _, hunk := range change.Hunks {
			for _, line := range hunk.Lines {
				switch line.Type {
				case preview.LineAdded:
					fmt.Printf("  + %s\n", line.Text)
				case preview.LineRemoved:
					fmt.Printf("  - %s\n", line.Text)
				default:
					fmt.Printf("    %s\n", line.Text)
				}
			}
		}
	}
	fmt.Println()
}

// createProvider builds an LLM provider from settings.
func createProvider(settings config.Settings) (llm.Provider, error) {
	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	return llm.NewProviderBuilder(providerType).
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
}
